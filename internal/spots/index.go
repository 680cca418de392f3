package spots

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrEmptySnapshot is returned when a snapshot parses but contains no spots.
var ErrEmptySnapshot = errors.New("snapshot contains no spots")

// Index is the in-memory spot index. It is built once from a snapshot and
// read-only afterward, so concurrent lookups need no locking.
type Index struct {
	spots   []Spot
	byID    map[int]*Spot
	byAlias map[string][]*Spot
}

// NewIndex builds the lookup structures over the given spot records.
func NewIndex(records []Spot) (*Index, error) {
	if len(records) == 0 {
		return nil, ErrEmptySnapshot
	}

	ix := &Index{
		spots:   records,
		byID:    make(map[int]*Spot, len(records)),
		byAlias: make(map[string][]*Spot),
	}

	for i := range ix.spots {
		s := &ix.spots[i]
		if other, dup := ix.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate spot id %d (%q and %q)", s.ID, other.Name, s.Name)
		}
		ix.byID[s.ID] = s

		ix.addAlias(Normalize(s.Name), s)
		for _, a := range s.Aliases {
			ix.addAlias(Normalize(a), s)
		}
	}

	return ix, nil
}

func (ix *Index) addAlias(key string, s *Spot) {
	if key == "" {
		return
	}
	for _, existing := range ix.byAlias[key] {
		if existing == s {
			return
		}
	}
	ix.byAlias[key] = append(ix.byAlias[key], s)
}

// FindByID returns the spot with the given provider id.
func (ix *Index) FindByID(id int) (*Spot, bool) {
	s, ok := ix.byID[id]
	return s, ok
}

// FindByAlias returns every spot registered under the given normalized alias.
// More than one result means the alias is legitimately ambiguous (e.g. two
// same-named spots in different states).
func (ix *Index) FindByAlias(normalized string) []*Spot {
	return ix.byAlias[normalized]
}

// FindBySubstring returns every spot whose normalized canonical name or alias
// contains the given normalized token, ranked by shortest canonical name,
// then name alphabetically, then lowest id.
func (ix *Index) FindBySubstring(normalized string) []*Spot {
	if normalized == "" {
		return nil
	}

	seen := make(map[int]bool)
	var matches []*Spot
	for i := range ix.spots {
		s := &ix.spots[i]
		if seen[s.ID] {
			continue
		}
		if strings.Contains(Normalize(s.Name), normalized) {
			matches = append(matches, s)
			seen[s.ID] = true
			continue
		}
		for _, a := range s.Aliases {
			if strings.Contains(Normalize(a), normalized) {
				matches = append(matches, s)
				seen[s.ID] = true
				break
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if len(a.Name) != len(b.Name) {
			return len(a.Name) < len(b.Name)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	return matches
}

// All returns the full spot sequence in snapshot order. Callers must not
// mutate the returned slice.
func (ix *Index) All() []Spot {
	return ix.spots
}

// Len returns the number of spots in the index.
func (ix *Index) Len() int {
	return len(ix.spots)
}

// Normalize lowercases a query token, collapses whitespace, hyphens, and
// underscores to a single space, and strips remaining punctuation, so that
// "Folly-Beach", "folly  beach", and "FollyBeach's" compare consistently.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r), r == '-', r == '_':
			if b.Len() > 0 {
				pendingSep = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep {
				b.WriteByte(' ')
				pendingSep = false
			}
			b.WriteRune(r)
		default:
			// punctuation: dropped entirely
		}
	}
	return b.String()
}
