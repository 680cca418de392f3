package ui

import (
	"sort"
	"strconv"

	"surfcast/internal/spots"
)

// Current ids top out around 9300; one extra order of magnitude of room.
const spotIDWidth = 5

// SpotListView renders a "name : id" directory of spots, sorted by name.
// It doubles as the disambiguation list for ambiguous queries.
func SpotListView(list []*spots.Spot) View {
	if len(list) == 0 {
		return View{Spans: []Span{Text("No spots available."), Newline()}}
	}

	nameWidth := 0
	for _, s := range list {
		if w := runeLen(s.Name); w > nameWidth {
			nameWidth = w
		}
	}

	sorted := make([]*spots.Spot, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	spans := make([]Span, 0, len(sorted)*2)
	for _, s := range sorted {
		spans = append(spans, Textf("%s : %s", padLeft(s.Name, nameWidth), padRight(strconv.Itoa(s.ID), spotIDWidth)))
		spans = append(spans, Newline())
	}
	return View{Spans: spans}
}

// AmbiguousView renders the candidate list for a query that matched several
// spots, with a heading telling the user to pick one.
func AmbiguousView(query string, candidates []*spots.Spot) View {
	heading := View{Spans: []Span{
		Textf("%q matches several spots; pick one by name or id:", query).WithBold(),
		Newline(),
		Newline(),
	}}
	list := SpotListView(candidates)
	return View{Spans: append(heading.Spans, list.Spans...)}
}
