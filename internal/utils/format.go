package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a duration as compact "2d 4h" / "4h 30m" / "12m"
// text for list views. Negative durations are rendered as elapsed overage.
func FormatDuration(d time.Duration) string {
	prefix := ""
	if d < 0 {
		prefix = "-"
		d = -d
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	switch {
	case days > 0:
		parts = append(parts, fmt.Sprintf("%dd", days))
		if hours > 0 {
			parts = append(parts, fmt.Sprintf("%dh", hours))
		}
	case hours > 0:
		parts = append(parts, fmt.Sprintf("%dh", hours))
		if minutes > 0 {
			parts = append(parts, fmt.Sprintf("%dm", minutes))
		}
	default:
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return prefix + strings.Join(parts, " ")
}

// FormatDate renders a date for user-facing messages.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders a timestamp for history entries.
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}

// PluralDays returns "day" or "days".
func PluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
