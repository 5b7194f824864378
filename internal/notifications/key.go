package notifications

import (
	"strconv"
	"strings"
)

// Category is the alert kind embedded at the front of an identifier.
type Category string

const (
	CategoryLowStock       Category = "low-stock"
	CategoryExpiration     Category = "expiration"
	CategoryDeviceReminder Category = "device-reminder"
	CategoryDeviceExpiry   Category = "device-expiry"
	CategoryGracePeriodEnd Category = "grace-period-end"
)

// categories is the closed set of known prefixes, used when parsing.
var categories = []Category{
	CategoryLowStock,
	CategoryExpiration,
	CategoryDeviceReminder,
	CategoryDeviceExpiry,
	CategoryGracePeriodEnd,
}

// Key identifies one alert. SubjectID is a supply or in-use item id; Extra
// qualifies the key further (the live quantity for low-stock alerts, so each
// distinct quantity gets its own alert). The serialized form is
// "{category}-{subjectId}" or "{category}-{subjectId}-{extra}".
type Key struct {
	Category  Category
	SubjectID string
	Extra     string
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Category))
	b.WriteByte('-')
	b.WriteString(k.SubjectID)
	if k.Extra != "" {
		b.WriteByte('-')
		b.WriteString(k.Extra)
	}
	return b.String()
}

// LowStockKey builds the quantity-qualified low-stock identifier. A drop from
// 3 to 2 to 1 yields three distinct identifiers, each deduplicated on its own.
func LowStockKey(supplyID string, quantity int) Key {
	return Key{Category: CategoryLowStock, SubjectID: supplyID, Extra: strconv.Itoa(quantity)}
}

func ExpirationKey(supplyID string) Key {
	return Key{Category: CategoryExpiration, SubjectID: supplyID}
}

func DeviceReminderKey(itemID string) Key {
	return Key{Category: CategoryDeviceReminder, SubjectID: itemID}
}

func DeviceExpiryKey(itemID string) Key {
	return Key{Category: CategoryDeviceExpiry, SubjectID: itemID}
}

func GracePeriodEndKey(itemID string) Key {
	return Key{Category: CategoryGracePeriodEnd, SubjectID: itemID}
}

// identifierCategory returns the category prefix of a serialized identifier
// and the remainder after it, or false for an unknown prefix.
func identifierCategory(id string) (Category, string, bool) {
	for _, c := range categories {
		prefix := string(c) + "-"
		if strings.HasPrefix(id, prefix) {
			return c, strings.TrimPrefix(id, prefix), true
		}
	}
	return "", "", false
}

// identifierMatchesSubject reports whether the serialized identifier belongs
// to the given subject id. The subject must be followed by a separator or the
// end of the identifier, so a subject that happens to be a prefix of another
// never matches.
func identifierMatchesSubject(id, subjectID string) bool {
	_, rest, ok := identifierCategory(id)
	if !ok {
		return false
	}
	return rest == subjectID || strings.HasPrefix(rest, subjectID+"-")
}
