package notifications

import (
	"context"
	"time"
)

// Trigger is the delayed-delivery instant of a scheduled notification. A nil
// *Trigger means deliver immediately.
type Trigger struct {
	At time.Time
}

// Notifier is the external notification delivery interface. Scheduling the
// same identifier again replaces a pending delivery (upsert); implementations
// must no-op gracefully when delivery is unavailable.
type Notifier interface {
	// Schedule delivers now (nil trigger) or at the trigger instant. Returns
	// the delivery id, or an empty string when delivery is unavailable.
	Schedule(ctx context.Context, title, body string, trigger *Trigger, identifier string) (string, error)
	// Cancel drops a pending delivery by identifier.
	Cancel(identifier string)
	// CancelAll drops every pending delivery.
	CancelAll()
	// RequestPermissions reports whether delivery is possible at all.
	RequestPermissions(ctx context.Context) bool
}

// Noop is the delivery fallback for environments without a notification
// channel. Reminders are best-effort; everything else keeps working.
type Noop struct{}

func (Noop) Schedule(context.Context, string, string, *Trigger, string) (string, error) {
	return "", nil
}

func (Noop) Cancel(string) {}

func (Noop) CancelAll() {}

func (Noop) RequestPermissions(context.Context) bool { return false }
