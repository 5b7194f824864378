package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"days and hours", 52 * time.Hour, "2d 4h"},
		{"exact days", 48 * time.Hour, "2d"},
		{"hours and minutes", 4*time.Hour + 30*time.Minute, "4h 30m"},
		{"exact hours", 4 * time.Hour, "4h"},
		{"minutes only", 12 * time.Minute, "12m"},
		{"zero", 0, "0m"},
		{"sub-minute", 30 * time.Second, "0m"},
		{"negative", -(26 * time.Hour), "-1d 2h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestPluralDays(t *testing.T) {
	if got := PluralDays(1); got != "day" {
		t.Errorf("PluralDays(1) = %q, want %q", got, "day")
	}
	if got := PluralDays(3); got != "days" {
		t.Errorf("PluralDays(3) = %q, want %q", got, "days")
	}
}
