// Package geo finds the nearest spot to a coordinate by great-circle distance.
package geo

import (
	"errors"
	"math"

	"surfcast/internal/spots"
)

// ErrNoSpots is returned when the index has no spots to search.
var ErrNoSpots = errors.New("no spots available")

const earthRadiusMiles = 3959.0

// HaversineDistance calculates distance in miles between two lat/lon points.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Locator answers nearest-spot queries over a spot index.
type Locator struct {
	index *spots.Index
}

// NewLocator creates a locator over the given index.
func NewLocator(ix *spots.Index) *Locator {
	return &Locator{index: ix}
}

// Nearest returns the spot closest to the given coordinate. The spot count is
// bounded and small, so a linear scan is fine. Equal distances break toward
// the lowest spot id, which keeps results deterministic.
func (l *Locator) Nearest(lat, lon float64) (*spots.Spot, error) {
	all := l.index.All()
	if len(all) == 0 {
		return nil, ErrNoSpots
	}

	var best *spots.Spot
	bestDist := math.Inf(1)
	for i := range all {
		s := &all[i]
		d := HaversineDistance(lat, lon, s.Latitude, s.Longitude)
		if d < bestDist || (d == bestDist && s.ID < best.ID) {
			best = s
			bestDist = d
		}
	}
	return best, nil
}
