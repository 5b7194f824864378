package database

import (
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
)

// Conversions between GORM records and domain models.

func SupplyToDomain(s *Supply) *domain.Supply {
	return &domain.Supply{
		ID:               s.ID,
		Name:             s.Name,
		Category:         domain.SupplyCategory(s.Category),
		Quantity:         s.Quantity,
		ExpirationDate:   s.ExpirationDate,
		Notes:            s.Notes,
		WarningThreshold: s.WarningThreshold,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func SupplyFromDomain(s *domain.Supply) *Supply {
	return &Supply{
		ID:               s.ID,
		Name:             s.Name,
		Category:         string(s.Category),
		Quantity:         s.Quantity,
		ExpirationDate:   s.ExpirationDate,
		Notes:            s.Notes,
		WarningThreshold: s.WarningThreshold,
	}
}

func TimerToDomain(t *Timer) *domain.Timer {
	return &domain.Timer{
		ID:           t.ID,
		Name:         t.Name,
		Type:         domain.TimerType(t.Type),
		StartDate:    t.StartDate,
		DurationDays: t.DurationDays,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func TimerFromDomain(t *domain.Timer) *Timer {
	return &Timer{
		ID:           t.ID,
		Name:         t.Name,
		Type:         string(t.Type),
		StartDate:    t.StartDate,
		DurationDays: t.DurationDays,
		Notes:        t.Notes,
	}
}

func InUseItemToDomain(i *InUseItem) *domain.InUseItem {
	return &domain.InUseItem{
		ID:                i.ID,
		SupplyID:          i.SupplyID,
		SupplyName:        i.SupplyName,
		Category:          domain.SupplyCategory(i.Category),
		StartedAt:         i.StartedAt,
		ExpiresAt:         i.ExpiresAt,
		GracePeriodHours:  i.GracePeriodHours,
		GracePeriodEndsAt: i.GracePeriodEndsAt,
		Details:           domain.InUseDetails(i.Details),
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func InUseItemFromDomain(i *domain.InUseItem) *InUseItem {
	return &InUseItem{
		ID:                i.ID,
		SupplyID:          i.SupplyID,
		SupplyName:        i.SupplyName,
		Category:          string(i.Category),
		StartedAt:         i.StartedAt,
		ExpiresAt:         i.ExpiresAt,
		GracePeriodHours:  i.GracePeriodHours,
		GracePeriodEndsAt: i.GracePeriodEndsAt,
		Details:           JSONDetails(i.Details),
	}
}

func HistoryEventToDomain(e *HistoryEvent) *domain.HistoryEvent {
	return &domain.HistoryEvent{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		Type:        domain.HistoryEventType(e.Type),
		Title:       e.Title,
		Description: e.Description,
		Metadata:    domain.HistoryMetadata(e.Metadata),
	}
}

func HistoryEventFromDomain(e *domain.HistoryEvent) *HistoryEvent {
	return &HistoryEvent{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		Type:        string(e.Type),
		Title:       e.Title,
		Description: e.Description,
		Metadata:    JSONMetadata(e.Metadata),
	}
}
