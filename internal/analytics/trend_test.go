package analytics

import (
	"testing"

	"github.com/mwalther/diametrics/internal/models"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{
			name:   "window of three",
			values: []float64{100, 110, 120, 130, 140},
			window: 3,
			want:   []float64{110, 120, 130},
		},
		{
			name:   "rounding to one decimal",
			values: []float64{100, 101, 103},
			window: 3,
			want:   []float64{101.3},
		},
		{
			name:   "window equals length",
			values: []float64{100, 110},
			window: 2,
			want:   []float64{105},
		},
		{
			name:   "too few values",
			values: []float64{100, 110},
			window: 5,
			want:   []float64{},
		},
		{
			name:   "empty input",
			values: nil,
			window: 3,
			want:   []float64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMovingAverage_DefaultWindow(t *testing.T) {
	values := []float64{100, 100, 100, 100, 100, 100}
	got := MovingAverage(values, 0)
	if len(got) != len(values)-DefaultMovingAvgWindow+1 {
		t.Errorf("zero window should fall back to %d, got %d outputs", DefaultMovingAvgWindow, len(got))
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		unit   models.Unit
		want   string
	}{
		{
			name:   "rising",
			values: []float64{100, 105, 110, 150, 160, 170},
			unit:   models.UnitMgdL,
			want:   TrendRising,
		},
		{
			name:   "falling",
			values: []float64{180, 175, 170, 120, 115, 110},
			unit:   models.UnitMgdL,
			want:   TrendFalling,
		},
		{
			name:   "stable within threshold",
			values: []float64{100, 105, 110, 112, 115, 118},
			unit:   models.UnitMgdL,
			want:   TrendStable,
		},
		{
			name:   "mmol threshold scales down",
			values: []float64{5.5, 5.6, 5.5, 7.0, 7.2, 7.1},
			unit:   models.UnitMmolL,
			want:   TrendRising,
		},
		{
			name:   "single value",
			values: []float64{120},
			unit:   models.UnitMgdL,
			want:   TrendInsufficientData,
		},
		{
			name:   "no values",
			values: nil,
			unit:   models.UnitMgdL,
			want:   TrendNoData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.values, tt.unit); got != tt.want {
				t.Errorf("ClassifyTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuickTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"rising", []float64{90, 100, 110, 120}, TrendRising},
		{"falling", []float64{140, 130, 120}, TrendFalling},
		{"flat endpoints", []float64{120, 150, 120}, TrendStable},
		{"two readings", []float64{100, 120}, TrendInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuickTrend(tt.values); got != tt.want {
				t.Errorf("QuickTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}
