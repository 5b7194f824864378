package notifications

import "testing"

func TestKeySerialization(t *testing.T) {
	cases := []struct {
		name string
		key  Key
		want string
	}{
		{"low stock embeds quantity", LowStockKey("abc-123", 3), "low-stock-abc-123-3"},
		{"expiration", ExpirationKey("abc-123"), "expiration-abc-123"},
		{"device reminder", DeviceReminderKey("item-9"), "device-reminder-item-9"},
		{"device expiry", DeviceExpiryKey("item-9"), "device-expiry-item-9"},
		{"grace period end", GracePeriodEndKey("item-9"), "grace-period-end-item-9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.key.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdentifierMatchesSubject(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		subject string
		want    bool
	}{
		{"low stock with quantity", "low-stock-abc-123-3", "abc-123", true},
		{"expiration exact", "expiration-abc-123", "abc-123", true},
		{"subject prefix does not false-positive", "low-stock-12345-3", "123", false},
		{"shared numeric prefix", "expiration-1234", "123", false},
		{"different subject", "expiration-abc-123", "xyz-9", false},
		{"unknown category", "unknown-abc-123", "abc-123", false},
		{"uuid-style subject with dashes", "device-expiry-6f1c2d3e-4a5b-6c7d", "6f1c2d3e-4a5b-6c7d", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := identifierMatchesSubject(tc.id, tc.subject); got != tc.want {
				t.Errorf("identifierMatchesSubject(%q, %q) = %v, want %v", tc.id, tc.subject, got, tc.want)
			}
		})
	}
}
