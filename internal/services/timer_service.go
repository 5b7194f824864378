package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/supplies-tracker/internal/errors"
	"github.com/vladimiradmaev/supplies-tracker/internal/logger"
	"gorm.io/gorm"
)

type TimerService struct {
	db      *gorm.DB
	history *HistoryService
}

func NewTimerService(db *gorm.DB, history *HistoryService) *TimerService {
	return &TimerService{db: db, history: history}
}

func (s *TimerService) AddTimer(ctx context.Context, timer *domain.Timer) error {
	if strings.TrimSpace(timer.Name) == "" {
		return apperrors.NewValidationError("timer name must not be empty")
	}
	if timer.DurationDays <= 0 {
		if d, ok := domain.DefaultTimerDurations[timer.Type]; ok {
			timer.DurationDays = d
		} else {
			return apperrors.NewValidationError("timer duration must be positive")
		}
	}
	if timer.ID == "" {
		timer.ID = uuid.NewString()
	}
	if timer.StartDate.IsZero() {
		timer.StartDate = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(database.TimerFromDomain(timer)).Error; err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}

	s.logEvent(ctx, domain.EventTimerAdded, "Timer Added",
		fmt.Sprintf("Started %d-day timer for %s", timer.DurationDays, timer.Name),
		domain.HistoryMetadata{TimerID: timer.ID})
	return nil
}

func (s *TimerService) UpdateTimer(ctx context.Context, id string, name string, durationDays int, notes string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("timer name must not be empty")
	}
	if durationDays <= 0 {
		return apperrors.NewValidationError("timer duration must be positive")
	}

	var record database.Timer
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTimerNotFound
		}
		return fmt.Errorf("failed to get timer: %w", err)
	}

	record.Name = name
	record.DurationDays = durationDays
	record.Notes = notes
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to update timer: %w", err)
	}

	s.logEvent(ctx, domain.EventTimerUpdated, "Timer Updated",
		fmt.Sprintf("Updated timer %s", name),
		domain.HistoryMetadata{TimerID: id})
	return nil
}

func (s *TimerService) DeleteTimer(ctx context.Context, id string) error {
	var record database.Timer
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTimerNotFound
		}
		return fmt.Errorf("failed to get timer: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&database.Timer{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}

	s.logEvent(ctx, domain.EventTimerDeleted, "Timer Deleted",
		fmt.Sprintf("Removed timer %s", record.Name),
		domain.HistoryMetadata{TimerID: id})
	return nil
}

// ResetTimer restarts the countdown from now, keeping name and duration.
func (s *TimerService) ResetTimer(ctx context.Context, id string) error {
	var record database.Timer
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTimerNotFound
		}
		return fmt.Errorf("failed to get timer: %w", err)
	}

	record.StartDate = time.Now()
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to reset timer: %w", err)
	}

	s.logEvent(ctx, domain.EventTimerReset, "Timer Reset",
		fmt.Sprintf("Restarted timer %s", record.Name),
		domain.HistoryMetadata{TimerID: id})
	return nil
}

func (s *TimerService) ListTimers(ctx context.Context) ([]domain.Timer, error) {
	var records []database.Timer
	if err := s.db.WithContext(ctx).Order("start_date ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}

	timers := make([]domain.Timer, 0, len(records))
	for i := range records {
		timers = append(timers, *database.TimerToDomain(&records[i]))
	}
	return timers, nil
}

func (s *TimerService) logEvent(ctx context.Context, eventType domain.HistoryEventType, title, description string, metadata domain.HistoryMetadata) {
	if err := s.history.AddEvent(ctx, eventType, title, description, metadata); err != nil {
		logger.Warn("Failed to log history event", "type", eventType, "error", err)
	}
}
