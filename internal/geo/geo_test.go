package geo

import (
	"math"
	"testing"

	"surfcast/internal/spots"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMiles              float64
		tolerance              float64
	}{
		{"same point", 40.0, -70.0, 40.0, -70.0, 0.0, 0.001},
		{"charleston to folly beach", 32.7765, -79.9311, 32.655, -79.9403, 8.4, 0.5},
		{"new york to los angeles", 40.7128, -74.0060, 34.0522, -118.2437, 2445.0, 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMiles) > tt.tolerance {
				t.Errorf("HaversineDistance() = %.2f miles, want %.2f ± %.2f", got, tt.wantMiles, tt.tolerance)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	ix, err := spots.NewIndex([]spots.Spot{
		{ID: 450, Name: "Folly Beach", Latitude: 32.655, Longitude: -79.9403},
		{ID: 358, Name: "Pipeline", Latitude: 21.6654, Longitude: -158.0521},
		{ID: 4203, Name: "Ormond Beach", Latitude: 29.2858, Longitude: -81.0559},
	})
	if err != nil {
		t.Fatal(err)
	}
	loc := NewLocator(ix)

	tests := []struct {
		name     string
		lat, lon float64
		wantID   int
	}{
		{"near charleston", 32.78, -79.93, 450},
		{"near honolulu", 21.31, -157.86, 358},
		{"near daytona", 29.21, -81.02, 4203},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loc.Nearest(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("Nearest() error = %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("Nearest(%.2f, %.2f) = spot %d, want %d", tt.lat, tt.lon, got.ID, tt.wantID)
			}
		})
	}
}

func TestNearestEmptyIndex(t *testing.T) {
	loc := NewLocator(new(spots.Index))
	if _, err := loc.Nearest(0, 0); err != ErrNoSpots {
		t.Errorf("Nearest() error = %v, want ErrNoSpots", err)
	}
}

func TestNearestDeterministicTies(t *testing.T) {
	// Two spots at the exact same coordinate: the lower id must win, every time.
	ix, err := spots.NewIndex([]spots.Spot{
		{ID: 20, Name: "B", Latitude: 10.0, Longitude: 10.0},
		{ID: 10, Name: "A", Latitude: 10.0, Longitude: 10.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	loc := NewLocator(ix)

	for i := 0; i < 5; i++ {
		got, err := loc.Nearest(10.0, 10.0)
		if err != nil {
			t.Fatalf("Nearest() error = %v", err)
		}
		if got.ID != 10 {
			t.Fatalf("Nearest() tie broke to spot %d, want 10", got.ID)
		}
	}
}
