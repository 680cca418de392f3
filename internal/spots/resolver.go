package spots

import (
	"errors"
	"strconv"
)

// ErrNotFound is returned when a query matches no spot.
var ErrNotFound = errors.New("no spot matches query")

// Resolver turns raw user-supplied spot queries into candidate spots.
// Resolution is deterministic string matching against pre-registered aliases,
// never fuzzy scoring.
type Resolver struct {
	index *Index
}

// NewResolver creates a resolver over the given index.
func NewResolver(ix *Index) *Resolver {
	return &Resolver{index: ix}
}

// Resolve maps a raw query to its candidate spots. A single-element result is
// an unambiguous resolution; multiple elements mean the query is legitimately
// ambiguous and the caller must disambiguate; the resolver never guesses.
//
// Queries that normalize to an integer are treated as direct spot-id lookups.
// Otherwise an exact alias match is tried first, then a ranked substring
// match. ErrNotFound is returned when nothing matches.
func (r *Resolver) Resolve(query string) ([]*Spot, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return nil, ErrNotFound
	}

	if id, err := strconv.Atoi(normalized); err == nil {
		s, ok := r.index.FindByID(id)
		if !ok {
			return nil, ErrNotFound
		}
		return []*Spot{s}, nil
	}

	if matches := r.index.FindByAlias(normalized); len(matches) > 0 {
		return matches, nil
	}

	if matches := r.index.FindBySubstring(normalized); len(matches) > 0 {
		return matches, nil
	}

	return nil, ErrNotFound
}
