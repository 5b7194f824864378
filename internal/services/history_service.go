package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/supplies-tracker/internal/database"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"gorm.io/gorm"
)

// maxHistoryEntries bounds the action log so storage never grows unbounded.
const maxHistoryEntries = 1000

type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

func (s *HistoryService) AddEvent(ctx context.Context, eventType domain.HistoryEventType, title, description string, metadata domain.HistoryMetadata) error {
	event := &database.HistoryEvent{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Type:        string(eventType),
		Title:       title,
		Description: description,
		Metadata:    database.JSONMetadata(metadata),
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create history event: %w", err)
	}

	return s.enforceCap(ctx)
}

// enforceCap drops the oldest entries beyond the configured maximum.
func (s *HistoryService) enforceCap(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.HistoryEvent{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count history events: %w", err)
	}
	if count <= maxHistoryEntries {
		return nil
	}

	var staleIDs []string
	if err := s.db.WithContext(ctx).Model(&database.HistoryEvent{}).
		Order("timestamp DESC").
		Offset(maxHistoryEntries).
		Limit(int(count) - maxHistoryEntries).
		Pluck("id", &staleIDs).Error; err != nil {
		return fmt.Errorf("failed to find stale history events: %w", err)
	}
	if len(staleIDs) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Delete(&database.HistoryEvent{}, "id IN ?", staleIDs).Error; err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

func (s *HistoryService) ListEvents(ctx context.Context, limit int) ([]domain.HistoryEvent, error) {
	query := s.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []database.HistoryEvent
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history events: %w", err)
	}
	return toDomainEvents(records), nil
}

func (s *HistoryService) ListByType(ctx context.Context, eventType domain.HistoryEventType) ([]domain.HistoryEvent, error) {
	var records []database.HistoryEvent
	if err := s.db.WithContext(ctx).
		Where("type = ?", string(eventType)).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history events by type: %w", err)
	}
	return toDomainEvents(records), nil
}

func (s *HistoryService) ListBySupply(ctx context.Context, supplyID string) ([]domain.HistoryEvent, error) {
	var records []database.HistoryEvent
	if err := s.db.WithContext(ctx).
		Where("metadata->>'supplyId' = ?", supplyID).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history events by supply: %w", err)
	}
	return toDomainEvents(records), nil
}

func (s *HistoryService) ListByDateRange(ctx context.Context, start, end time.Time) ([]domain.HistoryEvent, error) {
	var records []database.HistoryEvent
	if err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history events by date range: %w", err)
	}
	return toDomainEvents(records), nil
}

func (s *HistoryService) ClearHistory(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&database.HistoryEvent{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// PruneOlderThan removes entries older than the given number of days and
// returns how many were removed.
func (s *HistoryService) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&database.HistoryEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDomainEvents(records []database.HistoryEvent) []domain.HistoryEvent {
	events := make([]domain.HistoryEvent, 0, len(records))
	for i := range records {
		events = append(events, *database.HistoryEventToDomain(&records[i]))
	}
	return events
}
