package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/supplies-tracker/internal/errors"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"gorm.io/gorm"
)

type SupplyService struct {
	db         *gorm.DB
	engine     *notifications.Engine
	history    *HistoryService
	reconciler *Reconciler
}

func NewSupplyService(db *gorm.DB, engine *notifications.Engine, history *HistoryService, reconciler *Reconciler) *SupplyService {
	return &SupplyService{
		db:         db,
		engine:     engine,
		history:    history,
		reconciler: reconciler,
	}
}

func (s *SupplyService) AddSupply(ctx context.Context, supply *domain.Supply) error {
	if strings.TrimSpace(supply.Name) == "" {
		return apperrors.NewValidationError("supply name must not be empty")
	}
	if supply.Quantity < 0 {
		return apperrors.NewValidationError("supply quantity must not be negative")
	}
	if _, ok := domain.CategoryLabels[supply.Category]; !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown supply category %q", supply.Category))
	}

	if supply.ID == "" {
		supply.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(database.SupplyFromDomain(supply)).Error; err != nil {
		return fmt.Errorf("failed to create supply: %w", err)
	}

	s.logEvent(ctx, domain.EventSupplyAdded, "Supply Added",
		fmt.Sprintf("Added %d %s to inventory", supply.Quantity, supply.Name),
		domain.HistoryMetadata{
			SupplyID:       supply.ID,
			SupplyName:     supply.Name,
			SupplyCategory: string(supply.Category),
			NewValue:       float64(supply.Quantity),
		})
	s.reconciler.Run(ctx)
	return nil
}

func (s *SupplyService) UpdateSupply(ctx context.Context, id string, update domain.SupplyUpdate) (*domain.Supply, error) {
	var record database.Supply
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSupplyNotFound
		}
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}

	oldQuantity := record.Quantity
	if update.Name != nil {
		record.Name = *update.Name
	}
	if update.Category != nil {
		record.Category = string(*update.Category)
	}
	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, apperrors.NewValidationError("supply quantity must not be negative")
		}
		record.Quantity = *update.Quantity
	}
	if update.ClearExpiration {
		record.ExpirationDate = nil
	} else if update.ExpirationDate != nil {
		record.ExpirationDate = update.ExpirationDate
	}
	if update.Notes != nil {
		record.Notes = *update.Notes
	}
	if update.WarningThreshold != nil {
		record.WarningThreshold = update.WarningThreshold
	}

	// Restock invalidates dedup tracking so a later drop below the threshold
	// re-alerts, even at a previously seen quantity.
	if record.Quantity > oldQuantity {
		s.engine.ClearForSupply(id)
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to update supply: %w", err)
	}

	if record.Quantity != oldQuantity {
		change := record.Quantity - oldQuantity
		changeText := fmt.Sprintf("%+d", change)
		s.logEvent(ctx, domain.EventSupplyQuantityChanged, "Quantity Changed",
			fmt.Sprintf("%s: %s (%d → %d)", record.Name, changeText, oldQuantity, record.Quantity),
			domain.HistoryMetadata{
				SupplyID:       id,
				SupplyName:     record.Name,
				OldValue:       float64(oldQuantity),
				NewValue:       float64(record.Quantity),
				QuantityChange: change,
			})
	} else {
		s.logEvent(ctx, domain.EventSupplyUpdated, "Supply Updated",
			fmt.Sprintf("Updated %s", record.Name),
			domain.HistoryMetadata{SupplyID: id, SupplyName: record.Name})
	}

	s.reconciler.Run(ctx)
	return database.SupplyToDomain(&record), nil
}

func (s *SupplyService) DeleteSupply(ctx context.Context, id string) error {
	var record database.Supply
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSupplyNotFound
		}
		return fmt.Errorf("failed to get supply: %w", err)
	}

	// Drop pending deliveries and dedup state before the record goes away.
	s.engine.CancelForSupply(id)
	s.engine.ClearForSupply(id)

	if err := s.db.WithContext(ctx).Delete(&database.Supply{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete supply: %w", err)
	}

	s.logEvent(ctx, domain.EventSupplyDeleted, "Supply Deleted",
		fmt.Sprintf("Removed %s from inventory", record.Name),
		domain.HistoryMetadata{SupplyID: id, SupplyName: record.Name, SupplyCategory: record.Category})
	s.reconciler.Run(ctx)
	return nil
}

func (s *SupplyService) GetSupply(ctx context.Context, id string) (*domain.Supply, error) {
	var record database.Supply
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSupplyNotFound
		}
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	return database.SupplyToDomain(&record), nil
}

func (s *SupplyService) ListSupplies(ctx context.Context) ([]domain.Supply, error) {
	var records []database.Supply
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list supplies: %w", err)
	}
	return toDomainSupplies(records), nil
}

func (s *SupplyService) ListByCategory(ctx context.Context, category domain.SupplyCategory) ([]domain.Supply, error) {
	var records []database.Supply
	if err := s.db.WithContext(ctx).
		Where("category = ?", string(category)).
		Order("name ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list supplies by category: %w", err)
	}
	return toDomainSupplies(records), nil
}

// ListLowStock returns supplies at or below their effective warning
// threshold, using the same rule the reminder engine applies.
func (s *SupplyService) ListLowStock(ctx context.Context) ([]domain.Supply, error) {
	supplies, err := s.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}

	fallback := s.engine.GetSettings().LowStockThreshold
	low := make([]domain.Supply, 0)
	for _, supply := range supplies {
		if supply.Quantity <= supply.EffectiveThreshold(fallback) {
			low = append(low, supply)
		}
	}
	return low, nil
}

func (s *SupplyService) logEvent(ctx context.Context, eventType domain.HistoryEventType, title, description string, metadata domain.HistoryMetadata) {
	if err := s.history.AddEvent(ctx, eventType, title, description, metadata); err != nil {
		logger.Warn("Failed to log history event", "type", eventType, "error", err)
	}
}
