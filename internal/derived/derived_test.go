package derived

import (
	"testing"
	"time"

	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
)

func TestComputeTimerState(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	timer := &domain.Timer{
		ID:           "t1",
		Name:         "Sensor",
		Type:         domain.TimerCGM,
		StartDate:    start,
		DurationDays: 10,
	}

	t.Run("fresh timer has full duration remaining", func(t *testing.T) {
		state := ComputeTimerState(timer, start.Add(time.Hour))
		if state.DaysPassed != 0 {
			t.Errorf("expected 0 days passed, got %d", state.DaysPassed)
		}
		if state.DaysRemaining != 10 {
			t.Errorf("expected 10 days remaining, got %d", state.DaysRemaining)
		}
		if state.IsExpired || state.IsWarning {
			t.Errorf("fresh timer should be neither expired nor warning")
		}
	})

	t.Run("partial days truncate", func(t *testing.T) {
		state := ComputeTimerState(timer, start.Add(3*24*time.Hour+23*time.Hour))
		if state.DaysPassed != 3 {
			t.Errorf("expected 3 days passed, got %d", state.DaysPassed)
		}
		if state.DaysRemaining != 7 {
			t.Errorf("expected 7 days remaining, got %d", state.DaysRemaining)
		}
	})

	t.Run("warning exactly on the last day", func(t *testing.T) {
		state := ComputeTimerState(timer, start.Add(9*24*time.Hour))
		if state.DaysRemaining != 1 {
			t.Fatalf("expected 1 day remaining, got %d", state.DaysRemaining)
		}
		if !state.IsWarning {
			t.Error("expected warning with 1 day remaining")
		}
		if state.IsExpired {
			t.Error("timer with 1 day remaining is not expired")
		}
	})

	t.Run("expired timer is not a warning", func(t *testing.T) {
		state := ComputeTimerState(timer, start.Add(10*24*time.Hour))
		if !state.IsExpired {
			t.Error("expected expired at full duration")
		}
		if state.IsWarning {
			t.Error("expired timer must not be a warning")
		}
	})

	t.Run("overdue timer goes negative", func(t *testing.T) {
		state := ComputeTimerState(timer, start.Add(12*24*time.Hour))
		if state.DaysRemaining != -2 {
			t.Errorf("expected -2 days remaining, got %d", state.DaysRemaining)
		}
		if !state.IsExpired {
			t.Error("overdue timer should be expired")
		}
	})
}

func TestComputeInUseState(t *testing.T) {
	expiry := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	graceEnd := expiry.Add(8 * time.Hour)
	graceHours := 8

	device := &domain.InUseItem{
		ID:                "i1",
		SupplyName:        "Sensor",
		Category:          domain.CategoryCGM,
		StartedAt:         expiry.Add(-240 * time.Hour),
		ExpiresAt:         &expiry,
		GracePeriodHours:  &graceHours,
		GracePeriodEndsAt: &graceEnd,
		Details:           domain.InUseDetails{Type: domain.DetailsDevice, DurationHours: 240},
	}

	t.Run("before expiry counts down", func(t *testing.T) {
		state := ComputeInUseState(device, expiry.Add(-time.Second))
		if state.IsExpired {
			t.Error("should not be expired one second before expiry")
		}
		if state.TimeRemaining == nil || *state.TimeRemaining != time.Second {
			t.Errorf("expected 1s remaining, got %v", state.TimeRemaining)
		}
	})

	t.Run("just after expiry is in grace period", func(t *testing.T) {
		state := ComputeInUseState(device, expiry.Add(time.Second))
		if !state.IsExpired {
			t.Error("expected expired")
		}
		if !state.IsInGracePeriod {
			t.Error("expected grace period")
		}
		want := 8*time.Hour - time.Second
		if state.GracePeriodRemaining == nil || *state.GracePeriodRemaining != want {
			t.Errorf("expected %v grace remaining, got %v", want, state.GracePeriodRemaining)
		}
		if state.TimeRemaining != nil {
			t.Error("expired item has no time remaining")
		}
	})

	t.Run("after grace period both flags settle", func(t *testing.T) {
		state := ComputeInUseState(device, graceEnd.Add(time.Second))
		if !state.IsExpired {
			t.Error("expected expired")
		}
		if state.IsInGracePeriod {
			t.Error("grace period should be over")
		}
		if state.GracePeriodRemaining != nil {
			t.Error("no grace remaining after grace end")
		}
	})

	t.Run("ended-early device has no countdown", func(t *testing.T) {
		ended := *device
		ended.Details.EndedEarly = true
		state := ComputeInUseState(&ended, expiry.Add(-time.Hour))
		if state.TimeRemaining != nil || state.IsExpired {
			t.Error("ended-early device should carry no time state")
		}
	})

	t.Run("insulin item has no time state", func(t *testing.T) {
		insulin := &domain.InUseItem{
			ID:      "i2",
			Details: domain.InUseDetails{Type: domain.DetailsInsulin, TotalVolume: 1000, RemainingVolume: 400, Unit: domain.UnitUnits},
		}
		state := ComputeInUseState(insulin, expiry)
		if state.TimeRemaining != nil || state.IsExpired || state.IsInGracePeriod {
			t.Error("insulin item should carry no time state")
		}
	})

	t.Run("expired without grace period", func(t *testing.T) {
		noGrace := *device
		noGrace.GracePeriodHours = nil
		noGrace.GracePeriodEndsAt = nil
		state := ComputeInUseState(&noGrace, expiry.Add(time.Minute))
		if !state.IsExpired {
			t.Error("expected expired")
		}
		if state.IsInGracePeriod || state.GracePeriodRemaining != nil {
			t.Error("no grace period fields without gracePeriodEndsAt")
		}
	})
}

func TestHorizonHelpers(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		target time.Time
		days   int
		hours  int
	}{
		{"exactly one day", now.Add(24 * time.Hour), 1, 24},
		{"just over one day rounds up", now.Add(24*time.Hour + time.Minute), 2, 25},
		{"under an hour rounds up", now.Add(30 * time.Minute), 1, 1},
		{"in the past", now.Add(-2 * time.Hour), 0, -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysUntil(tc.target, now); got != tc.days {
				t.Errorf("DaysUntil = %d, want %d", got, tc.days)
			}
			if got := HoursUntil(tc.target, now); got != tc.hours {
				t.Errorf("HoursUntil = %d, want %d", got, tc.hours)
			}
		})
	}
}
