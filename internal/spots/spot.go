// Package spots holds the spot metadata index built from a crawler snapshot,
// and resolves free-text queries against it.
package spots

import (
	"encoding/json"
	"fmt"
	"os"
)

// Spot is one forecastable surf spot. Records are immutable once loaded; a
// snapshot refresh replaces the whole index rather than mutating spots in
// place.
type Spot struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	// UTCOffset is the spot's offset from UTC in seconds, as reported by the
	// crawler. Used to localize forecast timestamps.
	UTCOffset int `json:"utc_offset"`
}

// LoadSnapshot reads a crawler snapshot file and builds an index from it.
// A missing, malformed, or empty snapshot is a startup-fatal condition for
// callers; the returned error says which.
func LoadSnapshot(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spot snapshot %s: %w", path, err)
	}
	defer f.Close()

	var records []Spot
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing spot snapshot %s: %w", path, err)
	}

	ix, err := NewIndex(records)
	if err != nil {
		return nil, fmt.Errorf("building spot index from %s: %w", path, err)
	}
	return ix, nil
}
