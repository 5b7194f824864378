package services

import (
	"context"
	"fmt"

	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"gorm.io/gorm"
)

// DataService handles whole-dataset maintenance.
type DataService struct {
	db      *gorm.DB
	engine  *notifications.Engine
	history *HistoryService
}

func NewDataService(db *gorm.DB, engine *notifications.Engine, history *HistoryService) *DataService {
	return &DataService{db: db, engine: engine, history: history}
}

// ClearAllData wipes every record and resets notification state. The wipe
// itself is logged as the first entry of the fresh history.
func (s *DataService) ClearAllData(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&database.Supply{},
			&database.Timer{},
			&database.InUseItem{},
			&database.HistoryEvent{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.engine.ResetTracking()

	if err := s.history.AddEvent(ctx, domain.EventDataCleared, "Data Cleared",
		"All supplies, timers, in-use items and history were removed",
		domain.HistoryMetadata{}); err != nil {
		logger.Warn("Failed to log data clear", "error", err)
	}
	return nil
}
