package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/supplies-tracker/internal/errors"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"gorm.io/gorm"
)

type InUseService struct {
	db         *gorm.DB
	engine     *notifications.Engine
	history    *HistoryService
	reconciler *Reconciler
}

func NewInUseService(db *gorm.DB, engine *notifications.Engine, history *HistoryService, reconciler *Reconciler) *InUseService {
	return &InUseService{
		db:         db,
		engine:     engine,
		history:    history,
		reconciler: reconciler,
	}
}

// StartUsing takes one unit out of stock and opens an in-use record for it.
// Device items get an expiry computed from DurationHours, plus an optional
// grace period window after it.
func (s *InUseService) StartUsing(ctx context.Context, supplyID string, details domain.InUseDetails, gracePeriodHours *int) (*domain.InUseItem, error) {
	switch details.Type {
	case domain.DetailsInsulin:
		if details.TotalVolume <= 0 {
			return nil, apperrors.NewValidationError("insulin total volume must be positive")
		}
	case domain.DetailsDevice:
		if details.DurationHours <= 0 {
			return nil, apperrors.NewValidationError("device duration must be positive")
		}
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown in-use details type %q", details.Type))
	}

	var supplyRecord database.Supply
	if err := s.db.WithContext(ctx).First(&supplyRecord, "id = ?", supplyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSupplyNotFound
		}
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	if supplyRecord.Quantity <= 0 {
		return nil, apperrors.ErrOutOfStock
	}

	now := time.Now()
	if details.Type == domain.DetailsInsulin {
		details.RemainingVolume = details.TotalVolume
	}

	item := &domain.InUseItem{
		ID:               uuid.NewString(),
		SupplyID:         supplyID,
		SupplyName:       supplyRecord.Name,
		Category:         domain.SupplyCategory(supplyRecord.Category),
		StartedAt:        now,
		GracePeriodHours: gracePeriodHours,
		Details:          details,
	}
	if details.Type == domain.DetailsDevice {
		expiresAt := now.Add(time.Duration(details.DurationHours) * time.Hour)
		item.ExpiresAt = &expiresAt
		if gracePeriodHours != nil && *gracePeriodHours > 0 {
			graceEnd := expiresAt.Add(time.Duration(*gracePeriodHours) * time.Hour)
			item.GracePeriodEndsAt = &graceEnd
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, supplyID); err != nil {
			return err
		}
		if err := tx.Create(database.InUseItemFromDomain(item)).Error; err != nil {
			return fmt.Errorf("failed to create in-use item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, domain.EventItemStartedUsing, "Started Using",
		fmt.Sprintf("Started using %s", item.SupplyName),
		domain.HistoryMetadata{
			ItemID:         item.ID,
			SupplyID:       supplyID,
			SupplyName:     item.SupplyName,
			SupplyCategory: string(item.Category),
		})
	s.reconciler.Run(ctx)
	return item, nil
}

// RecordInsulinUsage subtracts the given volume, clamping the remainder to
// [0, TotalVolume].
func (s *InUseService) RecordInsulinUsage(ctx context.Context, itemID string, volumeUsed float64) (*domain.InUseItem, error) {
	if volumeUsed <= 0 {
		return nil, apperrors.NewValidationError("volume used must be positive")
	}

	record, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item := database.InUseItemToDomain(record)
	if item.Details.Type != domain.DetailsInsulin {
		return nil, apperrors.NewValidationError("item is not an insulin item")
	}

	oldRemaining := item.Details.RemainingVolume
	item.Details = item.Details.ConsumeVolume(volumeUsed)
	remaining := item.Details.RemainingVolume

	record.Details = database.JSONDetails(item.Details)
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to update insulin volume: %w", err)
	}

	s.logEvent(ctx, domain.EventInsulinVolumeUpdated, "Insulin Used",
		fmt.Sprintf("%s: %.1f %s used, %.1f %s remaining",
			item.SupplyName, volumeUsed, item.Details.Unit, remaining, item.Details.Unit),
		domain.HistoryMetadata{
			ItemID:     itemID,
			SupplyID:   item.SupplyID,
			SupplyName: item.SupplyName,
			OldValue:   oldRemaining,
			NewValue:   remaining,
			VolumeUsed: volumeUsed,
		})
	return database.InUseItemToDomain(record), nil
}

// EndDeviceEarly marks a device as taken off before its scheduled expiry.
// The item stays listed until removed, but no further reminders fire for it.
func (s *InUseService) EndDeviceEarly(ctx context.Context, itemID string) error {
	record, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	item := database.InUseItemToDomain(record)
	if item.Details.Type != domain.DetailsDevice {
		return apperrors.NewValidationError("item is not a device")
	}

	now := time.Now()
	item.Details.EndedEarly = true
	item.ExpiresAt = &now
	record.Details = database.JSONDetails(item.Details)
	record.ExpiresAt = &now
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to end device early: %w", err)
	}

	s.engine.CancelForInUseItem(itemID)

	s.logEvent(ctx, domain.EventDeviceEndedEarly, "Device Ended Early",
		fmt.Sprintf("Ended %s early", item.SupplyName),
		domain.HistoryMetadata{ItemID: itemID, SupplyID: item.SupplyID, SupplyName: item.SupplyName})
	s.reconciler.Run(ctx)
	return nil
}

func (s *InUseService) RemoveItem(ctx context.Context, itemID string) error {
	record, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}

	// Pending deliveries and dedup entries must not outlive the record.
	s.engine.CancelForInUseItem(itemID)

	if err := s.db.WithContext(ctx).Delete(&database.InUseItem{}, "id = ?", itemID).Error; err != nil {
		return fmt.Errorf("failed to remove in-use item: %w", err)
	}

	s.logEvent(ctx, domain.EventItemStoppedUsing, "Stopped Using",
		fmt.Sprintf("Stopped using %s", record.SupplyName),
		domain.HistoryMetadata{ItemID: itemID, SupplyID: record.SupplyID, SupplyName: record.SupplyName})
	s.reconciler.Run(ctx)
	return nil
}

func (s *InUseService) ListItems(ctx context.Context) ([]domain.InUseItem, error) {
	var records []database.InUseItem
	if err := s.db.WithContext(ctx).Order("started_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list in-use items: %w", err)
	}
	return toDomainItems(records), nil
}

// decrementStock takes one unit off a supply, guarded against going negative.
// The earlier stock check runs outside the transaction, so a supply depleted
// in between shows up here as zero rows affected.
func decrementStock(tx *gorm.DB, supplyID string) error {
	result := tx.Model(&database.Supply{}).
		Where("id = ? AND quantity > 0", supplyID).
		Update("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOutOfStock
	}
	return nil
}

func (s *InUseService) getItem(ctx context.Context, itemID string) (*database.InUseItem, error) {
	var record database.InUseItem
	if err := s.db.WithContext(ctx).First(&record, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get in-use item: %w", err)
	}
	return &record, nil
}

func (s *InUseService) logEvent(ctx context.Context, eventType domain.HistoryEventType, title, description string, metadata domain.HistoryMetadata) {
	if err := s.history.AddEvent(ctx, eventType, title, description, metadata); err != nil {
		logger.Warn("Failed to log history event", "type", eventType, "error", err)
	}
}
