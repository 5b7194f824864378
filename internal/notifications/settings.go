package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/kvstore"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
)

const settingsStorageKey = "notification-settings"

// SettingsStore holds the notification settings blob: loaded once at startup,
// mutated by the user, persisted as a whole object.
type SettingsStore struct {
	store kvstore.Store

	mu      sync.RWMutex
	current domain.NotificationSettings
}

// NewSettingsStore creates a store seeded with defaults. Call Load to pick up
// persisted values.
func NewSettingsStore(store kvstore.Store) *SettingsStore {
	return &SettingsStore{
		store:   store,
		current: domain.DefaultNotificationSettings(),
	}
}

// Load reads the persisted settings and merges them over the defaults. A
// missing or malformed blob leaves the defaults in place.
func (s *SettingsStore) Load(ctx context.Context) {
	data, exists, err := s.store.Get(ctx, settingsStorageKey)
	if err != nil {
		logger.Warn("Failed to load notification settings, using defaults", "error", err)
		return
	}
	if !exists {
		return
	}

	merged := domain.DefaultNotificationSettings()
	if err := json.Unmarshal(data, &merged); err != nil {
		logger.Warn("Malformed notification settings blob, using defaults", "error", err)
		return
	}

	s.mu.Lock()
	s.current = merged
	s.mu.Unlock()
}

// Get returns the current settings.
func (s *SettingsStore) Get() domain.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies a partial settings change and persists the whole object.
func (s *SettingsStore) Update(ctx context.Context, patch domain.NotificationSettingsPatch) (domain.NotificationSettings, error) {
	s.mu.Lock()
	patch.Apply(&s.current)
	updated := s.current
	s.mu.Unlock()

	data, err := json.Marshal(updated)
	if err != nil {
		return updated, fmt.Errorf("failed to marshal notification settings: %w", err)
	}
	if err := s.store.Set(ctx, settingsStorageKey, data); err != nil {
		return updated, fmt.Errorf("failed to persist notification settings: %w", err)
	}

	logger.Info("Notification settings updated",
		"low_stock", updated.LowStockEnabled,
		"expiration", updated.ExpirationEnabled,
		"device_timer", updated.DeviceTimerEnabled)
	return updated, nil
}
