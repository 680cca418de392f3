package ui

import (
	"html"
	"strings"

	"surfcast/internal/rating"
)

// Browser renders a view as a standalone HTML document. Styles become CSS
// classes so the stylesheet stays in charge of the palette.
type Browser struct{}

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>surfcast</title>
<style>
body { background: #0c0c0c; color: #d0d0d0; }
pre { font-family: "Menlo", "DejaVu Sans Mono", monospace; line-height: 1.15; }
.green { color: #4e9a06; }
.blue { color: #3465a4; }
.red { color: #cc0000; }
.bold { font-weight: bold; }
</style>
</head>
<body>
<pre>
`

const htmlFooter = `</pre>
</body>
</html>
`

// Render implements Renderer.
func (Browser) Render(v View) string {
	var b strings.Builder
	b.WriteString(htmlHeader)
	for _, span := range v.Spans {
		if span.Break {
			b.WriteByte('\n')
			continue
		}
		classes := spanClasses(span.Style)
		if classes == "" {
			b.WriteString(html.EscapeString(span.Text))
			continue
		}
		b.WriteString(`<span class="`)
		b.WriteString(classes)
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(span.Text))
		b.WriteString(`</span>`)
	}
	b.WriteByte('\n')
	b.WriteString(htmlFooter)
	return b.String()
}

func spanClasses(s Style) string {
	var classes []string
	if s.Fg != rating.ColorNone {
		classes = append(classes, s.Fg.String())
	}
	if s.Bold {
		classes = append(classes, "bold")
	}
	return strings.Join(classes, " ")
}
