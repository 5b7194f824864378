// Package derived computes display-ready state from stored records and a
// caller-supplied current instant. Everything here is a pure function; callers
// re-invoke on whatever cadence their display needs.
package derived

import (
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
)

// TimerState is the derived view of a wear timer at a given instant.
type TimerState struct {
	DaysPassed    int
	DaysRemaining int
	IsExpired     bool
	IsWarning     bool
}

// ComputeTimerState derives timer progress at now. DaysPassed truncates
// elapsed time to whole days. The warning band is exactly the last remaining
// day: expired timers are not warnings.
func ComputeTimerState(timer *domain.Timer, now time.Time) TimerState {
	daysPassed := int(now.Sub(timer.StartDate) / (24 * time.Hour))
	daysRemaining := timer.DurationDays - daysPassed

	return TimerState{
		DaysPassed:    daysPassed,
		DaysRemaining: daysRemaining,
		IsExpired:     daysRemaining <= 0,
		IsWarning:     daysRemaining > 0 && daysRemaining <= 1,
	}
}

// InUseState is the derived view of an in-use item at a given instant.
// TimeRemaining and GracePeriodRemaining are nil when not applicable.
type InUseState struct {
	TimeRemaining        *time.Duration
	IsExpired            bool
	IsInGracePeriod      bool
	GracePeriodRemaining *time.Duration
}

// ComputeInUseState derives expiry and grace-period status at now. Only
// device items with an expiry that have not been ended early produce a
// countdown; insulin items carry no time state.
func ComputeInUseState(item *domain.InUseItem, now time.Time) InUseState {
	var state InUseState

	if item.Details.Type != domain.DetailsDevice || item.ExpiresAt == nil || item.Details.EndedEarly {
		return state
	}

	if now.Before(*item.ExpiresAt) {
		remaining := item.ExpiresAt.Sub(now).Truncate(time.Second)
		state.TimeRemaining = &remaining
		return state
	}

	state.IsExpired = true
	if item.GracePeriodEndsAt != nil && now.Before(*item.GracePeriodEndsAt) {
		state.IsInGracePeriod = true
		remaining := item.GracePeriodEndsAt.Sub(now).Truncate(time.Second)
		state.GracePeriodRemaining = &remaining
	}

	return state
}

// DaysUntil returns the number of whole or partial days from now until t,
// rounded up. Negative when t is in the past.
func DaysUntil(t time.Time, now time.Time) int {
	return ceilDiv(t.Sub(now), 24*time.Hour)
}

// HoursUntil returns the number of whole or partial hours from now until t,
// rounded up. Negative when t is in the past.
func HoursUntil(t time.Time, now time.Time) int {
	return ceilDiv(t.Sub(now), time.Hour)
}

func ceilDiv(d, unit time.Duration) int {
	q := d / unit
	if d%unit > 0 {
		q++
	}
	return int(q)
}
