// Package rating maps provider star ratings onto a simplified color scale.
//
// The upstream API does not expose shore-relative wind quality directly, so
// the faded star count is used as a proxy. This is a known approximation; the
// mapping is kept isolated here so it can be swapped if a better signal
// becomes available.
package rating

// Color is a three-tier classification of surf conditions.
type Color int

const (
	// ColorNone is the zero value, used by render styles to mean "unstyled".
	ColorNone Color = iota
	Green
	Blue
	Red
)

// String returns the lowercase color name.
func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Red:
		return "red"
	default:
		return "none"
	}
}

// Classify maps a faded star count (0-5) to a condition color.
// Fewer faded stars means the rating holds up better in current wind.
func Classify(fadedStars int) Color {
	switch {
	case fadedStars <= 1:
		return Green
	case fadedStars == 2:
		return Blue
	default:
		return Red
	}
}
