package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
)

type delivery struct {
	title      string
	body       string
	identifier string
	trigger    *Trigger
}

// fakeNotifier records scheduling calls in place of a real delivery channel.
type fakeNotifier struct {
	mu          sync.Mutex
	unavailable bool
	failNext    bool
	immediate   []delivery
	scheduled   []delivery
	cancelled   []string
	cancelAlls  int
}

func (f *fakeNotifier) Schedule(_ context.Context, title, body string, trigger *Trigger, identifier string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return "", nil
	}
	if f.failNext {
		f.failNext = false
		return "", errors.New("delivery failed")
	}
	d := delivery{title: title, body: body, identifier: identifier, trigger: trigger}
	if trigger == nil {
		f.immediate = append(f.immediate, d)
	} else {
		f.scheduled = append(f.scheduled, d)
	}
	return identifier, nil
}

func (f *fakeNotifier) Cancel(identifier string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, identifier)
}

func (f *fakeNotifier) CancelAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAlls++
}

func (f *fakeNotifier) RequestPermissions(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

func (f *fakeNotifier) immediateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.immediate)
}

func newTestEngine(t *testing.T, now time.Time) (*Engine, *fakeNotifier, *Tracker) {
	t.Helper()
	store := kvstore.NewMemory()
	tracker := NewTracker(store, fixedClock(now))
	settings := NewSettingsStore(store)
	notifier := &fakeNotifier{}
	engine := NewEngine(notifier, tracker, settings, nil, fixedClock(now))
	return engine, notifier, tracker
}

func intPtr(v int) *int { return &v }

func TestReconcileLowStock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("one alert per distinct quantity", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		supply := domain.Supply{ID: "s1", Name: "Test Strips", Category: domain.CategoryTestStrips, Quantity: 3}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Fatalf("expected 1 immediate alert, got %d", got)
		}
		if notifier.immediate[0].identifier != "low-stock-s1-3" {
			t.Errorf("unexpected identifier %q", notifier.immediate[0].identifier)
		}

		// Each further drop is a new alert.
		supply.Quantity = 2
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		supply.Quantity = 1
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 3 {
			t.Errorf("expected 3 immediate alerts over the 3->2->1 drop, got %d", got)
		}
	})

	t.Run("reconcile is idempotent for unchanged inputs", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		expiry := now.Add(3 * 24 * time.Hour)
		supplies := []domain.Supply{
			{ID: "s1", Name: "Strips", Quantity: 2},
			{ID: "s2", Name: "Insulin", Quantity: 9, ExpirationDate: &expiry},
		}

		engine.Reconcile(ctx, supplies, nil)
		first := notifier.immediateCount()
		if first == 0 {
			t.Fatal("expected immediate alerts on first reconcile")
		}

		engine.Reconcile(ctx, supplies, nil)
		if got := notifier.immediateCount(); got != first {
			t.Errorf("second reconcile issued %d additional immediate alerts", got-first)
		}
	})

	t.Run("restock then re-drop re-alerts at the same quantity", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		supply := domain.Supply{ID: "s1", Name: "Strips", Quantity: 3, WarningThreshold: intPtr(5)}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Fatalf("expected initial alert, got %d", got)
		}

		// Quantity edited up past the threshold: the caller clears tracking.
		supply.Quantity = 6
		engine.ClearForSupply("s1")
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Fatalf("no alert expected above threshold, got %d", got)
		}

		// Back down to the same former quantity.
		supply.Quantity = 3
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 2 {
			t.Errorf("expected re-alert after restock cycle, got %d total", got)
		}
	})

	t.Run("prune alone re-allows after a supply leaves the low set", func(t *testing.T) {
		engine, notifier, tracker := newTestEngine(t, now)
		supply := domain.Supply{ID: "s1", Name: "Strips", Quantity: 2}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if !tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Fatal("identifier should be tracked after delivery")
		}

		// Supply restocked without an explicit clear: evaluate prunes it.
		supply.Quantity = 10
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if tracker.HasBeenSent(LowStockKey("s1", 2)) {
			t.Error("identifier should be pruned once the supply is no longer low")
		}

		supply.Quantity = 2
		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 2 {
			t.Errorf("expected re-alert after prune, got %d total", got)
		}
	})

	t.Run("supply threshold overrides the settings threshold", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		// Default settings threshold is 3; the supply's own threshold is 5.
		supply := domain.Supply{ID: "s1", Name: "Strips", Quantity: 4, WarningThreshold: intPtr(5)}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Errorf("expected alert under the supply's own threshold, got %d", got)
		}
	})

	t.Run("disabled low stock issues nothing", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		enabled := false
		if _, err := engine.UpdateSettings(ctx, domain.NotificationSettingsPatch{LowStockEnabled: &enabled}); err != nil {
			t.Fatalf("failed to update settings: %v", err)
		}

		engine.Reconcile(ctx, []domain.Supply{{ID: "s1", Name: "Strips", Quantity: 1}}, nil)
		if got := notifier.immediateCount(); got != 0 {
			t.Errorf("expected no alerts with low stock disabled, got %d", got)
		}
	})

	t.Run("failed delivery is retried on the next reconcile", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		notifier.failNext = true
		supply := domain.Supply{ID: "s1", Name: "Strips", Quantity: 2}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 0 {
			t.Fatalf("failed delivery should record nothing, got %d", got)
		}

		engine.Reconcile(ctx, []domain.Supply{supply}, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Errorf("expected retry to deliver, got %d", got)
		}
	})
}

func TestReconcileExpiration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("alerts inside the warning horizon", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		in3d := now.Add(3 * 24 * time.Hour)
		in30d := now.Add(30 * 24 * time.Hour)
		past := now.Add(-24 * time.Hour)
		supplies := []domain.Supply{
			{ID: "s1", Name: "Insulin", Quantity: 10, ExpirationDate: &in3d},
			{ID: "s2", Name: "Sensors", Quantity: 10, ExpirationDate: &in30d},
			{ID: "s3", Name: "Strips", Quantity: 10, ExpirationDate: &past},
			{ID: "s4", Name: "Lancets", Quantity: 10},
		}

		engine.Reconcile(ctx, supplies, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Fatalf("expected exactly 1 expiration alert, got %d", got)
		}
		if notifier.immediate[0].identifier != "expiration-s1" {
			t.Errorf("unexpected identifier %q", notifier.immediate[0].identifier)
		}
	})

	t.Run("one expiration alert per supply per dedup window", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		in3d := now.Add(3 * 24 * time.Hour)
		supplies := []domain.Supply{{ID: "s1", Name: "Insulin", Quantity: 10, ExpirationDate: &in3d}}

		engine.Reconcile(ctx, supplies, nil)
		engine.Reconcile(ctx, supplies, nil)
		if got := notifier.immediateCount(); got != 1 {
			t.Errorf("expected a single expiration alert, got %d", got)
		}
	})
}

func TestReconcileDeviceTimers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	deviceItem := func(id string, expiresAt time.Time, graceEndsAt *time.Time, endedEarly bool) domain.InUseItem {
		return domain.InUseItem{
			ID:                id,
			SupplyID:          "sup-" + id,
			SupplyName:        "Sensor",
			Category:          domain.CategoryCGM,
			StartedAt:         now.Add(-24 * time.Hour),
			ExpiresAt:         &expiresAt,
			GracePeriodEndsAt: graceEndsAt,
			Details:           domain.InUseDetails{Type: domain.DetailsDevice, DurationHours: 240, EndedEarly: endedEarly},
		}
	}

	t.Run("in-window reminder plus scheduled expiry and grace alerts", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		expiry := now.Add(10 * time.Hour)
		graceEnd := expiry.Add(8 * time.Hour)
		items := []domain.InUseItem{deviceItem("i1", expiry, &graceEnd, false)}

		engine.Reconcile(ctx, nil, items)

		if got := notifier.immediateCount(); got != 1 {
			t.Fatalf("expected 1 immediate reminder, got %d", got)
		}
		if notifier.immediate[0].identifier != "device-reminder-i1" {
			t.Errorf("unexpected reminder identifier %q", notifier.immediate[0].identifier)
		}

		if len(notifier.scheduled) != 2 {
			t.Fatalf("expected expiry and grace alerts scheduled, got %d", len(notifier.scheduled))
		}
		byID := map[string]delivery{}
		for _, d := range notifier.scheduled {
			byID[d.identifier] = d
		}
		if d, ok := byID["device-expiry-i1"]; !ok || !d.trigger.At.Equal(expiry) {
			t.Errorf("device-expiry should be scheduled at the expiry instant, got %+v", d)
		}
		if d, ok := byID["grace-period-end-i1"]; !ok || !d.trigger.At.Equal(graceEnd) {
			t.Errorf("grace-period-end should be scheduled at the grace end instant, got %+v", d)
		}
	})

	t.Run("reminder outside the window is not due", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		expiry := now.Add(48 * time.Hour) // default reminder window is 24h
		items := []domain.InUseItem{deviceItem("i1", expiry, nil, false)}

		engine.Reconcile(ctx, nil, items)
		if got := notifier.immediateCount(); got != 0 {
			t.Errorf("expected no reminder 48h out, got %d", got)
		}
		if len(notifier.scheduled) != 1 {
			t.Errorf("expected only the expiry delivery scheduled, got %d", len(notifier.scheduled))
		}
	})

	t.Run("ended-early device produces nothing", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		expiry := now.Add(10 * time.Hour)
		items := []domain.InUseItem{deviceItem("i1", expiry, nil, true)}

		engine.Reconcile(ctx, nil, items)
		if notifier.immediateCount() != 0 || len(notifier.scheduled) != 0 {
			t.Error("ended-early device must produce no alerts")
		}
	})

	t.Run("insulin item produces nothing", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		items := []domain.InUseItem{{
			ID:      "i2",
			Details: domain.InUseDetails{Type: domain.DetailsInsulin, TotalVolume: 1000, RemainingVolume: 500},
		}}

		engine.Reconcile(ctx, nil, items)
		if notifier.immediateCount() != 0 || len(notifier.scheduled) != 0 {
			t.Error("insulin item must produce no device alerts")
		}
	})

	t.Run("expired device past grace schedules nothing", func(t *testing.T) {
		engine, notifier, _ := newTestEngine(t, now)
		expiry := now.Add(-10 * time.Hour)
		graceEnd := expiry.Add(4 * time.Hour)
		items := []domain.InUseItem{deviceItem("i1", expiry, &graceEnd, false)}

		engine.Reconcile(ctx, nil, items)
		if len(notifier.scheduled) != 0 {
			t.Errorf("past instants must not be scheduled, got %d", len(notifier.scheduled))
		}
	})
}

func TestReconcileUnavailableDelivery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	engine, notifier, tracker := newTestEngine(t, now)
	notifier.unavailable = true
	supplies := []domain.Supply{{ID: "s1", Name: "Strips", Quantity: 1}}

	// Must not panic or error, and must not consume dedup state.
	engine.Reconcile(ctx, supplies, nil)
	if tracker.HasBeenSent(LowStockKey("s1", 1)) {
		t.Error("no identifier may be marked sent when delivery is unavailable")
	}

	notifier.unavailable = false
	engine.Reconcile(ctx, supplies, nil)
	if got := notifier.immediateCount(); got != 1 {
		t.Errorf("alert should fire once delivery becomes available, got %d", got)
	}
}

func TestCancelHelpers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cancel for in-use item clears delivery and tracking", func(t *testing.T) {
		engine, notifier, tracker := newTestEngine(t, now)
		tracker.MarkSent(DeviceReminderKey("i1"))

		engine.CancelForInUseItem("i1")

		if tracker.HasBeenSent(DeviceReminderKey("i1")) {
			t.Error("reminder tracking should be cleared with the item")
		}
		want := map[string]bool{
			"device-reminder-i1":  true,
			"device-expiry-i1":    true,
			"grace-period-end-i1": true,
		}
		for _, id := range notifier.cancelled {
			delete(want, id)
		}
		if len(want) != 0 {
			t.Errorf("missing cancels for %v", want)
		}
	})

	t.Run("reset tracking wipes everything", func(t *testing.T) {
		engine, notifier, tracker := newTestEngine(t, now)
		tracker.MarkSent(LowStockKey("s1", 1))

		engine.ResetTracking()

		if tracker.HasBeenSent(LowStockKey("s1", 1)) {
			t.Error("tracking should be empty after reset")
		}
		if notifier.cancelAlls == 0 {
			t.Error("reset should cancel pending deliveries")
		}
	})
}
