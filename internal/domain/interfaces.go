package domain

import (
	"context"
	"time"
)

// SupplyService handles stock-level operations
type SupplyService interface {
	AddSupply(ctx context.Context, supply *Supply) error
	UpdateSupply(ctx context.Context, id string, update SupplyUpdate) (*Supply, error)
	DeleteSupply(ctx context.Context, id string) error
	GetSupply(ctx context.Context, id string) (*Supply, error)
	ListSupplies(ctx context.Context) ([]Supply, error)
	ListByCategory(ctx context.Context, category SupplyCategory) ([]Supply, error)
	ListLowStock(ctx context.Context) ([]Supply, error)
}

// SupplyUpdate is a partial supply mutation; nil fields are left unchanged.
type SupplyUpdate struct {
	Name             *string
	Category         *SupplyCategory
	Quantity         *int
	ExpirationDate   *time.Time
	ClearExpiration  bool
	Notes            *string
	WarningThreshold *int
}

// TimerService handles wear-timer operations
type TimerService interface {
	AddTimer(ctx context.Context, timer *Timer) error
	UpdateTimer(ctx context.Context, id string, name string, durationDays int, notes string) error
	DeleteTimer(ctx context.Context, id string) error
	ResetTimer(ctx context.Context, id string) error
	ListTimers(ctx context.Context) ([]Timer, error)
}

// InUseService handles items transitioned out of stock into active use
type InUseService interface {
	StartUsing(ctx context.Context, supplyID string, details InUseDetails, gracePeriodHours *int) (*InUseItem, error)
	RecordInsulinUsage(ctx context.Context, itemID string, volumeUsed float64) (*InUseItem, error)
	EndDeviceEarly(ctx context.Context, itemID string) error
	RemoveItem(ctx context.Context, itemID string) error
	ListItems(ctx context.Context) ([]InUseItem, error)
}

// HistoryService records and queries the action log
type HistoryService interface {
	AddEvent(ctx context.Context, eventType HistoryEventType, title, description string, metadata HistoryMetadata) error
	ListEvents(ctx context.Context, limit int) ([]HistoryEvent, error)
	ListByType(ctx context.Context, eventType HistoryEventType) ([]HistoryEvent, error)
	ListBySupply(ctx context.Context, supplyID string) ([]HistoryEvent, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]HistoryEvent, error)
	ClearHistory(ctx context.Context) error
	PruneOlderThan(ctx context.Context, days int) (int64, error)
}

// BotService handles telegram bot operations
type BotService interface {
	Start(ctx context.Context) error
	Stop()
}
