package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"surfcast/internal/rating"
)

// The renderer pins the ANSI profile: output usually goes to a pipe (curl,
// the HTTP response body), where auto-detection would strip all color.
var ansi = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}()

var termStyles = map[rating.Color]lipgloss.Style{
	rating.Green: ansi.NewStyle().Foreground(lipgloss.Color("2")),
	rating.Blue:  ansi.NewStyle().Foreground(lipgloss.Color("4")),
	rating.Red:   ansi.NewStyle().Foreground(lipgloss.Color("1")),
}

// Terminal renders a view as ANSI-styled text.
type Terminal struct{}

// Render implements Renderer.
func (Terminal) Render(v View) string {
	var b strings.Builder
	for _, span := range v.Spans {
		if span.Break {
			b.WriteByte('\n')
			continue
		}
		style, styled := termStyles[span.Style.Fg]
		if !styled {
			style = ansi.NewStyle()
		}
		if span.Style.Bold {
			style = style.Bold(true)
		}
		if !styled && !span.Style.Bold {
			// Unstyled spans skip lipgloss entirely so plain text stays
			// byte-identical with no reset codes.
			b.WriteString(span.Text)
			continue
		}
		b.WriteString(style.Render(span.Text))
	}
	b.WriteByte('\n')
	return b.String()
}
