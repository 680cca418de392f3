package ui

// Format selects a render backend.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatHTML     Format = "html"
)

// Renderer produces the final document for one output format. Backends only
// encode the styles the view carries; classification and unit handling happen
// upstream.
type Renderer interface {
	Render(v View) string
}

// For returns the renderer for a format, defaulting to terminal output.
func For(f Format) Renderer {
	if f == FormatHTML {
		return Browser{}
	}
	return Terminal{}
}
