package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/config"
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// JSONDetails stores the in-use item tagged variant as a JSON column.
type JSONDetails domain.InUseDetails

func (d JSONDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *JSONDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported details column type %T", value)
	}
}

// JSONMetadata stores history event metadata as a JSON column.
type JSONMetadata domain.HistoryMetadata

func (m JSONMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *JSONMetadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
}

type Supply struct {
	ID               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Name             string `gorm:"not null"`
	Category         string `gorm:"index;not null"`
	Quantity         int    `gorm:"not null;default:0"`
	ExpirationDate   *time.Time
	Notes            string
	WarningThreshold *int
}

type Timer struct {
	ID           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string `gorm:"not null"`
	Type         string `gorm:"not null"`
	StartDate    time.Time
	DurationDays int `gorm:"not null"`
	Notes        string
}

type InUseItem struct {
	ID                string `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SupplyID          string `gorm:"index"`
	SupplyName        string
	Category          string
	StartedAt         time.Time
	ExpiresAt         *time.Time
	GracePeriodHours  *int
	GracePeriodEndsAt *time.Time
	Details           JSONDetails `gorm:"type:jsonb"`
}

type HistoryEvent struct {
	ID          string `gorm:"primaryKey"`
	Timestamp   time.Time
	Type        string `gorm:"index;not null"`
	Title       string
	Description string
	Metadata    JSONMetadata `gorm:"type:jsonb"`
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Supply{}, &Timer{}, &InUseItem{}, &HistoryEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
