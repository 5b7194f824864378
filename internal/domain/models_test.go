package domain

import "testing"

func TestConsumeVolume(t *testing.T) {
	tests := []struct {
		name          string
		total         float64
		remaining     float64
		volumeUsed    float64
		wantRemaining float64
	}{
		{"normal usage", 1000, 1000, 250, 750},
		{"overdraw clamps to zero", 1000, 750, 900, 0},
		{"usage at zero stays at zero", 1000, 0, 50, 0},
		{"exact depletion", 300, 300, 300, 0},
		{"corrupt remainder pulled back to total", 1000, 1400, 100, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := InUseDetails{
				Type:            DetailsInsulin,
				TotalVolume:     tt.total,
				RemainingVolume: tt.remaining,
				Unit:            UnitUnits,
			}
			got := details.ConsumeVolume(tt.volumeUsed)
			if got.RemainingVolume != tt.wantRemaining {
				t.Errorf("ConsumeVolume(%v) remaining = %v, want %v",
					tt.volumeUsed, got.RemainingVolume, tt.wantRemaining)
			}
			if got.RemainingVolume < 0 {
				t.Error("remaining volume must never be negative")
			}
		})
	}
}

func TestConsumeVolumeSequence(t *testing.T) {
	details := InUseDetails{Type: DetailsInsulin, TotalVolume: 1000, RemainingVolume: 1000, Unit: UnitUnits}

	details = details.ConsumeVolume(250)
	if details.RemainingVolume != 750 {
		t.Fatalf("after first use remaining = %v, want 750", details.RemainingVolume)
	}
	details = details.ConsumeVolume(900)
	if details.RemainingVolume != 0 {
		t.Fatalf("after overdraw remaining = %v, want 0", details.RemainingVolume)
	}
}
