// Package ui builds a format-agnostic view of a forecast and renders it for
// terminals or browsers.
package ui

import (
	"fmt"

	"surfcast/internal/rating"
)

// View is an ordered sequence of styled spans representing a whole document.
// It carries no format-specific markup; backends decide how styles appear.
type View struct {
	Spans []Span
}

// Line groups the spans of a single row inside a widget, before explicit
// line breaks are inserted.
type Line []Span

// Span is a contiguous piece of text with consistent styling, or a line
// break. Spans do not nest.
type Span struct {
	Text  string
	Break bool
	Style Style
}

// Style holds the attributes a backend can encode for one span. A zero Fg
// means unstyled.
type Style struct {
	Fg   rating.Color
	Bold bool
}

// Text creates an unstyled span.
func Text(s string) Span {
	return Span{Text: s}
}

// Textf creates an unstyled span from a format string.
func Textf(format string, args ...interface{}) Span {
	return Span{Text: fmt.Sprintf(format, args...)}
}

// Newline creates a line break span.
func Newline() Span {
	return Span{Break: true}
}

// WithFg returns a copy of the span with the given foreground color.
func (s Span) WithFg(c rating.Color) Span {
	s.Style.Fg = c
	return s
}

// WithBold returns a copy of the span with bold set.
func (s Span) WithBold() Span {
	s.Style.Bold = true
	return s
}
