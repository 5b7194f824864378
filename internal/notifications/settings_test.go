package notifications

import (
	"context"
	"testing"

	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
)

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when nothing stored", func(t *testing.T) {
		s := NewSettingsStore(kvstore.NewMemory())
		s.Load(ctx)

		got := s.Get()
		want := domain.DefaultNotificationSettings()
		if got != want {
			t.Errorf("Get() = %+v, want defaults %+v", got, want)
		}
	})

	t.Run("partial stored blob merges over defaults", func(t *testing.T) {
		store := kvstore.NewMemory()
		if err := store.Set(ctx, settingsStorageKey, []byte(`{"lowStockThreshold":10}`)); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}

		s := NewSettingsStore(store)
		s.Load(ctx)

		got := s.Get()
		if got.LowStockThreshold != 10 {
			t.Errorf("LowStockThreshold = %d, want 10", got.LowStockThreshold)
		}
		if !got.ExpirationEnabled || got.ExpirationDays != 7 {
			t.Error("fields missing from the blob must keep their defaults")
		}
	})

	t.Run("malformed blob falls back to defaults", func(t *testing.T) {
		store := kvstore.NewMemory()
		if err := store.Set(ctx, settingsStorageKey, []byte("not json")); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}

		s := NewSettingsStore(store)
		s.Load(ctx)

		if s.Get() != domain.DefaultNotificationSettings() {
			t.Error("malformed blob must yield defaults")
		}
	})

	t.Run("update persists and survives reload", func(t *testing.T) {
		store := kvstore.NewMemory()
		s := NewSettingsStore(store)
		s.Load(ctx)

		enabled := false
		hours := 12
		updated, err := s.Update(ctx, domain.NotificationSettingsPatch{
			DeviceTimerEnabled:  &enabled,
			DeviceReminderHours: &hours,
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.DeviceTimerEnabled || updated.DeviceReminderHours != 12 {
			t.Errorf("patch not applied: %+v", updated)
		}
		if !updated.LowStockEnabled {
			t.Error("untouched fields must keep their values")
		}

		reloaded := NewSettingsStore(store)
		reloaded.Load(ctx)
		if got := reloaded.Get(); got != updated {
			t.Errorf("reloaded settings = %+v, want %+v", got, updated)
		}
	})
}
