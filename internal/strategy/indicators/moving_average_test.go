package indicators

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected float64
	}{
		{
			name:     "exact window",
			prices:   []float64{1, 2, 3, 4, 5},
			period:   5,
			expected: 3,
		},
		{
			name:     "uses only the last period values",
			prices:   []float64{100, 102, 101, 103, 104},
			period:   3,
			expected: 102.666667, // (101 + 103 + 104) / 3
		},
		{
			name:     "insufficient data returns zero",
			prices:   []float64{1, 2, 3},
			period:   5,
			expected: 0,
		},
		{
			name:     "empty input returns zero",
			prices:   nil,
			period:   3,
			expected: 0,
		},
		{
			name:     "non-positive period returns zero",
			prices:   []float64{1, 2, 3},
			period:   0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.prices, tt.period)
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestEMA(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected float64
	}{
		{
			name:     "seeded with SMA then recurrence",
			prices:   []float64{100, 102, 101, 103, 104},
			period:   3,
			expected: 103.0,
		},
		{
			name:     "window equal to period collapses to SMA",
			prices:   []float64{2, 4, 6},
			period:   3,
			expected: 4,
		},
		{
			name:     "insufficient data returns zero",
			prices:   []float64{1, 2},
			period:   3,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EMA(tt.prices, tt.period)
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestEMASeries(t *testing.T) {
	prices := []float64{100, 102, 101, 103, 104}
	series := EMASeries(prices, 3)

	if len(series) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(series))
	}
	// Seed is SMA of the first three closes, then the recurrence applies.
	expected := []float64{101, 102, 103}
	for i := range expected {
		if math.Abs(series[i]-expected[i]) > 0.0001 {
			t.Errorf("Point %d: expected %f, got %f", i, expected[i], series[i])
		}
	}

	if got := EMASeries([]float64{1, 2}, 3); got != nil {
		t.Errorf("Expected nil series for insufficient data, got %v", got)
	}
}
