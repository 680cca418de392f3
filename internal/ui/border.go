package ui

import "strings"

const (
	lineVert       = "│"
	lineHorizontal = "─"
	cornerTopLeft  = "┌"
	cornerTopRight = "┐"
	cornerBtmLeft  = "└"
	cornerBtmRight = "┘"
	teeLeft        = "┤"
	teeRight       = "├"
)

// viewportWidth is the total output width. Smaller user terminals will see
// choppy output, so keep it as low as the views allow.
const viewportWidth = 90

// interiorWidth is the viewport minus the border characters.
const interiorWidth = viewportWidth - 2

// borderBox wraps inner lines with a titled border, the title sitting in its
// own small box straddling the top edge.
func borderBox(title string, inner []Line) []Span {
	titled := " " + title + " "

	var spans []Span

	// Top: the title box pokes above the border line.
	boxTop := cornerTopLeft + strings.Repeat(lineHorizontal, runeLen(titled)) + cornerTopRight
	spans = append(spans, Text(center(boxTop, viewportWidth)), Newline())

	boxMid := teeLeft + titled + teeRight
	spans = append(spans, Text(cornerTopLeft+centerFill(boxMid, interiorWidth)+cornerTopRight), Newline())

	boxBtm := cornerBtmLeft + strings.Repeat(lineHorizontal, runeLen(titled)) + cornerBtmRight
	spans = append(spans, Text(lineVert+center(boxBtm, interiorWidth)+lineVert), Newline())

	// Interior lines between vertical borders.
	for _, line := range inner {
		spans = append(spans, Text(lineVert))
		spans = append(spans, line...)
		spans = append(spans, Text(lineVert), Newline())
	}

	spans = append(spans, Text(cornerBtmLeft+strings.Repeat(lineHorizontal, interiorWidth)+cornerBtmRight))
	return spans
}

func runeLen(s string) int {
	return len([]rune(s))
}

// center pads s with spaces to the given rune width.
func center(s string, width int) string {
	return centerWith(s, width, ' ')
}

// centerFill pads s with horizontal border lines to the given rune width.
func centerFill(s string, width int) string {
	return centerWith(s, width, '─')
}

func centerWith(s string, width int, fill rune) string {
	pad := width - runeLen(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	right := pad - left
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
}

// padRight left-aligns s inside a field of spaces.
func padRight(s string, width int) string {
	pad := width - runeLen(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// padLeft right-aligns s inside a field of spaces.
func padLeft(s string, width int) string {
	pad := width - runeLen(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// blank returns a span of spaces.
func blank(width int) Span {
	return Text(strings.Repeat(" ", width))
}
