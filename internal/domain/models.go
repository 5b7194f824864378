package domain

import (
	"time"
)

// SupplyCategory classifies a stocked supply.
type SupplyCategory string

const (
	CategoryInsulin      SupplyCategory = "insulin"
	CategoryCGM          SupplyCategory = "cgm"
	CategoryTestStrips   SupplyCategory = "test-strips"
	CategoryLancets      SupplyCategory = "lancets"
	CategoryNeedles      SupplyCategory = "needles"
	CategoryInfusionSets SupplyCategory = "infusion-sets"
	CategoryPump         SupplyCategory = "pump"
	CategoryOther        SupplyCategory = "other"
)

// CategoryLabels maps categories to display names.
var CategoryLabels = map[SupplyCategory]string{
	CategoryInsulin:      "Insulin",
	CategoryCGM:          "CGM/Sensors",
	CategoryTestStrips:   "Test Strips",
	CategoryLancets:      "Lancets",
	CategoryNeedles:      "Needles",
	CategoryInfusionSets: "Infusion Sets",
	CategoryPump:         "Insulin Pump",
	CategoryOther:        "Other Supplies",
}

// AllCategories in display order.
var AllCategories = []SupplyCategory{
	CategoryInsulin,
	CategoryCGM,
	CategoryTestStrips,
	CategoryLancets,
	CategoryNeedles,
	CategoryInfusionSets,
	CategoryPump,
	CategoryOther,
}

// DefaultWarningThreshold is used when a supply has no threshold of its own
// and the notification settings are unavailable.
const DefaultWarningThreshold = 5

// Supply represents a stocked consumable item
type Supply struct {
	ID               string
	Name             string
	Category         SupplyCategory
	Quantity         int // invariant: >= 0
	ExpirationDate   *time.Time
	Notes            string
	WarningThreshold *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveThreshold returns the supply's own warning threshold, or the given
// fallback when none is set.
func (s *Supply) EffectiveThreshold(fallback int) int {
	if s.WarningThreshold != nil {
		return *s.WarningThreshold
	}
	return fallback
}

// TimerType classifies a wear timer.
type TimerType string

const (
	TimerCGM         TimerType = "cgm"
	TimerInfusionSet TimerType = "infusion-set"
	TimerCustom      TimerType = "custom"
)

// DefaultTimerDurations holds the default duration in days per timer type.
// CGM default matches a Dexcom G6 sensor session.
var DefaultTimerDurations = map[TimerType]int{
	TimerCGM:         10,
	TimerInfusionSet: 3,
	TimerCustom:      7,
}

// Timer represents a wear/replacement countdown
type Timer struct {
	ID           string
	Name         string
	Type         TimerType
	StartDate    time.Time
	DurationDays int // invariant: > 0
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DetailsType discriminates the in-use item variant.
type DetailsType string

const (
	DetailsInsulin DetailsType = "insulin"
	DetailsDevice  DetailsType = "device"
)

// VolumeUnit is the unit insulin volume is tracked in.
type VolumeUnit string

const (
	UnitML    VolumeUnit = "ml"
	UnitUnits VolumeUnit = "units"
)

// InUseDetails is the tagged variant payload of an in-use item. Exactly one of
// the two branches is populated, selected by Type.
type InUseDetails struct {
	Type DetailsType `json:"type"`

	// insulin branch
	TotalVolume     float64    `json:"totalVolume,omitempty"`
	RemainingVolume float64    `json:"remainingVolume,omitempty"` // invariant: [0, TotalVolume]
	Unit            VolumeUnit `json:"unit,omitempty"`

	// device branch
	DurationHours int  `json:"durationHours,omitempty"`
	EndedEarly    bool `json:"endedEarly,omitempty"`
}

// ConsumeVolume returns the details after using volumeUsed, with
// RemainingVolume clamped to [0, TotalVolume]. A stored remainder above the
// total (corrupt data) is pulled back into range too.
func (d InUseDetails) ConsumeVolume(volumeUsed float64) InUseDetails {
	remaining := d.RemainingVolume - volumeUsed
	if remaining < 0 {
		remaining = 0
	}
	if remaining > d.TotalVolume {
		remaining = d.TotalVolume
	}
	d.RemainingVolume = remaining
	return d
}

// InUseItem is an instance of a supply currently being consumed or worn.
// SupplyID references a Supply by convention only.
type InUseItem struct {
	ID                string
	SupplyID          string
	SupplyName        string
	Category          SupplyCategory
	StartedAt         time.Time
	ExpiresAt         *time.Time
	GracePeriodHours  *int
	GracePeriodEndsAt *time.Time
	Details           InUseDetails
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NotificationSettings controls the three reminder categories.
type NotificationSettings struct {
	LowStockEnabled     bool `json:"lowStockEnabled"`
	ExpirationEnabled   bool `json:"expirationEnabled"`
	DeviceTimerEnabled  bool `json:"deviceTimerEnabled"`
	LowStockThreshold   int  `json:"lowStockThreshold"`
	ExpirationDays      int  `json:"expirationDays"`
	DeviceReminderHours int  `json:"deviceReminderHours"`
}

// DefaultNotificationSettings returns the settings used when nothing is stored.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		LowStockEnabled:     true,
		ExpirationEnabled:   true,
		DeviceTimerEnabled:  true,
		LowStockThreshold:   3,
		ExpirationDays:      7,
		DeviceReminderHours: 24,
	}
}

// NotificationSettingsPatch is a partial settings update; nil fields are left
// unchanged.
type NotificationSettingsPatch struct {
	LowStockEnabled     *bool `json:"lowStockEnabled,omitempty"`
	ExpirationEnabled   *bool `json:"expirationEnabled,omitempty"`
	DeviceTimerEnabled  *bool `json:"deviceTimerEnabled,omitempty"`
	LowStockThreshold   *int  `json:"lowStockThreshold,omitempty"`
	ExpirationDays      *int  `json:"expirationDays,omitempty"`
	DeviceReminderHours *int  `json:"deviceReminderHours,omitempty"`
}

// Apply merges the patch into s.
func (p NotificationSettingsPatch) Apply(s *NotificationSettings) {
	if p.LowStockEnabled != nil {
		s.LowStockEnabled = *p.LowStockEnabled
	}
	if p.ExpirationEnabled != nil {
		s.ExpirationEnabled = *p.ExpirationEnabled
	}
	if p.DeviceTimerEnabled != nil {
		s.DeviceTimerEnabled = *p.DeviceTimerEnabled
	}
	if p.LowStockThreshold != nil {
		s.LowStockThreshold = *p.LowStockThreshold
	}
	if p.ExpirationDays != nil {
		s.ExpirationDays = *p.ExpirationDays
	}
	if p.DeviceReminderHours != nil {
		s.DeviceReminderHours = *p.DeviceReminderHours
	}
}
