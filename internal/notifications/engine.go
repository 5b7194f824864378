package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/derived"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

// Alert is one reminder the engine decided is due. Immediate alerts (nil
// Trigger) are gated by the dedup tracker; scheduled alerts fire at their
// trigger instant and rely on the notifier's upsert-by-identifier semantics.
type Alert struct {
	Key     Key
	Title   string
	Body    string
	Trigger *Trigger
	Tracked bool
}

// Engine computes the due set of reminders from current records, settings and
// dedup state, and drives scheduling on the external notifier. Reminders are
// best-effort: no failure here ever propagates to record CRUD.
type Engine struct {
	notifier Notifier
	tracker  *Tracker
	settings *SettingsStore
	history  domain.HistoryService
	now      func() time.Time
}

// NewEngine wires the policy engine. history may be nil; a nil now falls back
// to time.Now.
func NewEngine(notifier Notifier, tracker *Tracker, settings *SettingsStore, history domain.HistoryService, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		notifier: notifier,
		tracker:  tracker,
		settings: settings,
		history:  history,
		now:      now,
	}
}

// EvaluateLowStock returns due low-stock alerts and prunes tracker entries
// for supplies that are no longer low. Identifiers embed the live quantity so
// every further drop re-alerts on its own.
func (e *Engine) EvaluateLowStock(supplies []domain.Supply) []Alert {
	settings := e.settings.Get()

	currentLow := make(map[string]int)
	var due []Alert
	for i := range supplies {
		supply := &supplies[i]
		threshold := supply.EffectiveThreshold(settings.LowStockThreshold)
		if supply.Quantity > threshold {
			continue
		}
		currentLow[supply.ID] = supply.Quantity

		if !settings.LowStockEnabled {
			continue
		}
		key := LowStockKey(supply.ID, supply.Quantity)
		if e.tracker.HasBeenSent(key) {
			continue
		}
		due = append(due, Alert{
			Key:     key,
			Title:   "Low Stock Alert",
			Body:    fmt.Sprintf("%s is running low (%d remaining)", supply.Name, supply.Quantity),
			Tracked: true,
		})
	}

	e.tracker.PruneLowStock(currentLow)
	return due
}

// EvaluateExpiration returns due expiration alerts: one per supply whose
// expiration date falls within the configured warning horizon.
func (e *Engine) EvaluateExpiration(supplies []domain.Supply, now time.Time) []Alert {
	settings := e.settings.Get()
	if !settings.ExpirationEnabled {
		return nil
	}

	var due []Alert
	for i := range supplies {
		supply := &supplies[i]
		if supply.ExpirationDate == nil {
			continue
		}
		daysUntil := derived.DaysUntil(*supply.ExpirationDate, now)
		if daysUntil <= 0 || daysUntil > settings.ExpirationDays {
			continue
		}
		key := ExpirationKey(supply.ID)
		if e.tracker.HasBeenSent(key) {
			continue
		}
		due = append(due, Alert{
			Key:     key,
			Title:   "Expiration Warning",
			Body:    fmt.Sprintf("%s expires in %d %s", supply.Name, daysUntil, pluralDays(daysUntil)),
			Tracked: true,
		})
	}
	return due
}

// EvaluateDeviceTimers returns device alerts for in-use items: an in-window
// reminder plus expiry and grace-period-end deliveries scheduled at their
// exact instants.
func (e *Engine) EvaluateDeviceTimers(items []domain.InUseItem, now time.Time) []Alert {
	settings := e.settings.Get()
	if !settings.DeviceTimerEnabled {
		return nil
	}

	var due []Alert
	for i := range items {
		item := &items[i]
		if item.Details.Type != domain.DetailsDevice || item.ExpiresAt == nil || item.Details.EndedEarly {
			continue
		}

		hoursUntil := derived.HoursUntil(*item.ExpiresAt, now)
		if hoursUntil > 0 && hoursUntil <= settings.DeviceReminderHours {
			key := DeviceReminderKey(item.ID)
			if !e.tracker.HasBeenSent(key) {
				due = append(due, Alert{
					Key:     key,
					Title:   "Device Reminder",
					Body:    fmt.Sprintf("%s will expire in %d hours", item.SupplyName, hoursUntil),
					Tracked: true,
				})
			}
		}

		if item.ExpiresAt.After(now) {
			due = append(due, Alert{
				Key:     DeviceExpiryKey(item.ID),
				Title:   "Device Expired",
				Body:    fmt.Sprintf("%s has expired and should be replaced", item.SupplyName),
				Trigger: &Trigger{At: *item.ExpiresAt},
			})
		}

		if item.GracePeriodEndsAt != nil && item.GracePeriodEndsAt.After(now) {
			due = append(due, Alert{
				Key:     GracePeriodEndKey(item.ID),
				Title:   "Grace Period Ending",
				Body:    fmt.Sprintf("%s grace period is ending - replace immediately", item.SupplyName),
				Trigger: &Trigger{At: *item.GracePeriodEndsAt},
			})
		}
	}
	return due
}

// Reconcile recomputes all due reminders from the given record set and issues
// scheduling calls. It never fails: when delivery is unavailable it does
// nothing beyond tracker upkeep.
func (e *Engine) Reconcile(ctx context.Context, supplies []domain.Supply, items []domain.InUseItem) {
	now := e.now()

	due := e.EvaluateLowStock(supplies)
	due = append(due, e.EvaluateExpiration(supplies, now)...)
	due = append(due, e.EvaluateDeviceTimers(items, now)...)

	if !e.notifier.RequestPermissions(ctx) {
		logger.Debug("Notification delivery unavailable, skipping scheduling", "due", len(due))
		return
	}

	// Pending future deliveries are rebuilt from scratch on every reconcile;
	// anything already delivered is unaffected.
	e.notifier.CancelAll()

	for _, alert := range due {
		e.dispatch(ctx, alert)
	}
}

// dispatch issues one scheduling call. Tracked alerts are marked sent before
// the delivery call so a concurrent reconcile cannot double-schedule the same
// identifier; a failed delivery is unmarked and retried on the next reconcile.
func (e *Engine) dispatch(ctx context.Context, alert Alert) {
	identifier := alert.Key.String()

	if alert.Tracked {
		e.tracker.MarkSent(alert.Key)
	}

	deliveryID, err := e.notifier.Schedule(ctx, alert.Title, alert.Body, alert.Trigger, identifier)
	if err != nil {
		if alert.Tracked {
			e.tracker.Unmark(alert.Key)
		}
		logger.Warn("Failed to schedule notification", "identifier", identifier, "error", err)
		return
	}
	if deliveryID == "" {
		// Delivery quietly unavailable.
		if alert.Tracked {
			e.tracker.Unmark(alert.Key)
		}
		return
	}

	logger.Info("Notification scheduled", "identifier", identifier, "immediate", alert.Trigger == nil)

	if alert.Tracked && e.history != nil {
		err := e.history.AddEvent(ctx, domain.EventNotificationSent, "Notification Sent",
			fmt.Sprintf("%s: %s", alert.Title, alert.Body),
			domain.HistoryMetadata{NotificationType: string(alert.Key.Category)})
		if err != nil {
			logger.Warn("Failed to log notification history", "error", err)
		}
	}
}

// ClearForSupply drops dedup state for a supply, called on restock and before
// deletion so the next occurrence of a condition re-alerts.
func (e *Engine) ClearForSupply(supplyID string) {
	e.tracker.ClearForSubject(supplyID)
}

// CancelForSupply drops pending deliveries tied to a supply.
func (e *Engine) CancelForSupply(supplyID string) {
	e.notifier.Cancel(ExpirationKey(supplyID).String())
}

// CancelForInUseItem drops pending deliveries and dedup state tied to an
// in-use item, called when the item is removed.
func (e *Engine) CancelForInUseItem(itemID string) {
	e.notifier.Cancel(DeviceReminderKey(itemID).String())
	e.notifier.Cancel(DeviceExpiryKey(itemID).String())
	e.notifier.Cancel(GracePeriodEndKey(itemID).String())
	e.tracker.ClearForSubject(itemID)
}

// ResetTracking wipes all dedup state and pending deliveries, used by "clear
// all data".
func (e *Engine) ResetTracking() {
	e.notifier.CancelAll()
	e.tracker.Reset()
}

// GetSettings returns the current notification settings.
func (e *Engine) GetSettings() domain.NotificationSettings {
	return e.settings.Get()
}

// UpdateSettings applies a partial settings change.
func (e *Engine) UpdateSettings(ctx context.Context, patch domain.NotificationSettingsPatch) (domain.NotificationSettings, error) {
	return e.settings.Update(ctx, patch)
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
