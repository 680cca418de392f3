package ui

import (
	"fmt"
	"strings"

	"surfcast/internal/msw"
)

// ForecastView turns a forecast into the full document view: a week-long
// swell graph followed by one bordered table per day. Rendering is total; an
// empty forecast yields a placeholder rather than an error.
func ForecastView(fc *msw.Forecast) View {
	if fc == nil || len(fc.Periods) == 0 {
		return View{Spans: []Span{
			Text("No forecast data available."),
			Newline(),
		}}
	}

	var spans []Span
	if fc.Stale {
		spans = append(spans,
			Text(center("(provider unavailable; showing cached forecast)", viewportWidth)).WithBold(),
			Newline(),
		)
	}

	spans = append(spans, newGraph(fc.Periods).draw()...)

	for _, day := range splitDays(fc.Periods) {
		spans = append(spans, Newline())
		spans = append(spans, newDay(day).draw()...)
	}

	return View{Spans: spans}
}

// ForecastPage is ForecastView with the spot name as a centered heading.
func ForecastPage(name string, fc *msw.Forecast) View {
	spans := []Span{
		Text(center(name, viewportWidth)).WithBold(),
		Newline(),
		Newline(),
	}
	return View{Spans: append(spans, ForecastView(fc).Spans...)}
}

// splitDays partitions periods by local calendar day, preserving order.
func splitDays(periods []msw.Period) [][]msw.Period {
	var days [][]msw.Period
	var cur []msw.Period
	for _, p := range periods {
		if len(cur) > 0 {
			prev := cur[len(cur)-1].LocalTimestamp
			if prev.YearDay() != p.LocalTimestamp.YearDay() || prev.Year() != p.LocalTimestamp.Year() {
				days = append(days, cur)
				cur = nil
			}
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		days = append(days, cur)
	}
	return days
}

// graph is the swell-height chart over the whole forecast.
type graph struct {
	periods   []msw.Period
	minHeight float64
	maxHeight float64
}

const graphHeight = 10

func newGraph(periods []msw.Period) graph {
	// Head room so the tallest bar doesn't touch the frame.
	buffer := 1.0
	if periods[0].Swell.Unit == "m" {
		buffer = 0.5
	}
	maxHeight := 0.0
	for _, p := range periods {
		if h := p.Swell.AbsMaxBreakingHeight; h > maxHeight {
			maxHeight = h
		}
	}
	return graph{
		periods:   periods,
		minHeight: 0,
		maxHeight: maxHeight + buffer,
	}
}

func (g graph) title() string {
	first := g.periods[0].LocalTimestamp
	last := g.periods[len(g.periods)-1].LocalTimestamp
	return fmt.Sprintf("%s - %s", first.Format("Mon Jan 02"), last.Format("Mon Jan 02"))
}

func (g graph) draw() []Span {
	return borderBox(g.title(), g.drawInner())
}

// scale maps a swell height onto graph rows, 0 at the bottom.
func (g graph) scale(height float64) int {
	span := g.maxHeight - g.minHeight
	proportion := (height - g.minHeight) / span
	return int(proportion*graphHeight + 0.5)
}

func (g graph) drawInner() []Line {
	legend, legendWidth := g.legendColumn()

	numBins := len(g.periods)
	numBoundaries := numBins - 1
	binWidth := (interiorWidth - legendWidth - numBoundaries) / numBins
	usedSpace := legendWidth + numBoundaries + numBins*binWidth
	rightMargin := interiorWidth - usedSpace

	// Row 0 is the top of the graph; a period's bar surface sits at
	// graphHeight - scale(height).
	heights := make([]int, numBins)
	for x, p := range g.periods {
		heights[x] = graphHeight - g.scale(p.Swell.AbsMaxBreakingHeight)
	}

	lines := make([]Line, graphHeight)
	for y := 0; y < graphHeight; y++ {
		line := Line{legend[y]}
		for x, p := range g.periods {
			if x > 0 {
				line = append(line, boundarySpan(heights[x-1], heights[x], y).WithFg(p.Color))
			}
			line = append(line, binSpan(heights[x], y, binWidth).WithFg(p.Color))
		}
		line = append(line, blank(rightMargin))
		lines[y] = line
	}
	return lines
}

// binSpan draws one row of one period's column: the surface line at its
// height, fill dots below it, blank above.
func binSpan(height, y, width int) Span {
	switch {
	case height == y:
		return Text(strings.Repeat(lineHorizontal, width))
	case height < y:
		return Text(strings.Repeat(".", width))
	default:
		return blank(width)
	}
}

// boundarySpan draws the single-character joint between two adjacent columns,
// stepping the surface line up or down as the heights change.
func boundarySpan(last, cur, y int) Span {
	switch {
	case cur > y && last > y:
		return Text(" ") // above both surfaces
	case cur < y && last < y:
		return Text(".")
	case (cur > y && last < y) || (cur < y && last > y):
		return Text(lineVert)
	case cur == last:
		return Text(lineHorizontal)
	case cur > last && cur == y:
		return Text(cornerBtmLeft)
	case cur < last && cur == y:
		return Text(cornerTopLeft)
	case cur > last && last == y:
		return Text(cornerTopRight)
	default: // cur < last && last == y
		return Text(cornerBtmRight)
	}
}

// legendColumn renders the y-axis labels and returns their fixed width.
func (g graph) legendColumn() ([]Span, int) {
	unit := g.periods[0].Swell.Unit
	maxStr := trimFloat(g.maxHeight)
	minStr := trimFloat(g.minHeight)
	numWidth := runeLen(maxStr)
	if w := runeLen(minStr); w > numWidth {
		numWidth = w
	}

	legendMax := fmt.Sprintf(" %s %s ", padLeft(maxStr, numWidth), unit)
	legendMin := fmt.Sprintf(" %s %s ", padLeft(minStr, numWidth), unit)
	width := runeLen(legendMax)

	legend := make([]Span, graphHeight)
	for i := range legend {
		legend[i] = blank(width)
	}
	legend[0] = Text(legendMax)
	legend[graphHeight-1] = Text(legendMin)
	return legend, width
}

// trimFloat formats a height without a trailing ".0".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}

// day is the detailed table for one local calendar day.
type day struct {
	periods     []msw.Period
	binWidth    int
	rightMargin int
}

const (
	dayLegendWidth   = 11
	dayBoundaryWidth = 1
)

func newDay(periods []msw.Period) day {
	numPeriods := len(periods)
	// One boundary between the legend and the first column, then one
	// between each pair of columns.
	numBoundaries := numPeriods
	binWidth := (interiorWidth - numBoundaries*dayBoundaryWidth - dayLegendWidth) / numPeriods
	usedSpace := dayLegendWidth + numBoundaries*dayBoundaryWidth + numPeriods*binWidth
	return day{
		periods:     periods,
		binWidth:    binWidth,
		rightMargin: interiorWidth - usedSpace,
	}
}

func (d day) title() string {
	return d.periods[0].LocalTimestamp.Format("Mon Jan 02")
}

func (d day) draw() []Span {
	return borderBox(d.title(), d.drawInner())
}

func (d day) drawInner() []Line {
	skip := Line{blank(interiorWidth)}

	var lines []Line
	lines = append(lines, d.timeRow())
	lines = append(lines, skip)
	if d.hasComponent(primary) {
		lines = append(lines, d.swellRows("Primary", primary)...)
		lines = append(lines, skip)
	}
	if d.hasComponent(secondary) {
		lines = append(lines, d.swellRows("Secondary", secondary)...)
		lines = append(lines, skip)
	}
	lines = append(lines, d.windRows()...)
	lines = append(lines, skip)
	lines = append(lines, d.weatherRow())
	return lines
}

// timeRow labels each column with its local time, colored by the period's
// condition classification.
func (d day) timeRow() Line {
	line := Line{Text(center("Time", dayLegendWidth))}
	for _, p := range d.periods {
		line = append(line, d.boundary())
		label := strings.TrimSpace(strings.ToLower(p.LocalTimestamp.Format("3PM")))
		line = append(line, Text(center(label, d.binWidth)).WithFg(p.Color).WithBold())
	}
	line = append(line, blank(d.rightMargin))
	return line
}

func primary(s msw.SwellComponents) *msw.SwellComponent   { return s.Primary }
func secondary(s msw.SwellComponents) *msw.SwellComponent { return s.Secondary }

func (d day) hasComponent(pick func(msw.SwellComponents) *msw.SwellComponent) bool {
	for _, p := range d.periods {
		if pick(p.Swell.Components) != nil {
			return true
		}
	}
	return false
}

// swellRows renders one swell train as three rows: height, period, direction.
func (d day) swellRows(legend string, pick func(msw.SwellComponents) *msw.SwellComponent) []Line {
	const (
		heightIx = 0
		periodIx = 1
		dirIx    = 2
	)
	rows := make([]Line, 3)
	rows[heightIx] = Line{blank(dayLegendWidth)}
	rows[periodIx] = Line{Text(center(legend, dayLegendWidth))}
	rows[dirIx] = Line{Text(center("Swell", dayLegendWidth))}

	for _, p := range d.periods {
		for i := range rows {
			rows[i] = append(rows[i], d.boundary())
		}
		c := pick(p.Swell.Components)
		if c == nil {
			for i := range rows {
				rows[i] = append(rows[i], blank(d.binWidth))
			}
			continue
		}
		rows[heightIx] = append(rows[heightIx], Text(center(fmt.Sprintf("%.1f %s", c.Height, p.Swell.Unit), d.binWidth)))
		rows[periodIx] = append(rows[periodIx], Text(center(fmt.Sprintf("%ds", c.Period), d.binWidth)))
		rows[dirIx] = append(rows[dirIx], Text(center(fmt.Sprintf("%s %.0f°", compassToArrow(c.CompassDirection), c.Direction), d.binWidth)))
	}
	for i := range rows {
		rows[i] = append(rows[i], blank(d.rightMargin))
	}
	return rows
}

// windRows renders wind speed and direction.
func (d day) windRows() []Line {
	const (
		speedIx = 0
		dirIx   = 1
	)
	rows := make([]Line, 2)
	rows[speedIx] = Line{blank(dayLegendWidth)}
	rows[dirIx] = Line{Text(center("Wind", dayLegendWidth))}

	for _, p := range d.periods {
		for i := range rows {
			rows[i] = append(rows[i], d.boundary())
		}
		rows[speedIx] = append(rows[speedIx], Text(center(fmt.Sprintf("%d %s", p.Wind.Speed, p.Wind.Unit), d.binWidth)))
		rows[dirIx] = append(rows[dirIx], Text(center(fmt.Sprintf("%s %.0f°", compassToArrow(p.Wind.CompassDirection), p.Wind.Direction), d.binWidth)))
	}
	for i := range rows {
		rows[i] = append(rows[i], blank(d.rightMargin))
	}
	return rows
}

// weatherRow renders air temperature.
func (d day) weatherRow() Line {
	line := Line{Text(center("Air", dayLegendWidth))}
	for _, p := range d.periods {
		line = append(line, d.boundary())
		line = append(line, Text(center(fmt.Sprintf("%d °%s", p.Condition.Temperature, strings.ToUpper(p.Condition.UnitTemperature)), d.binWidth)))
	}
	line = append(line, blank(d.rightMargin))
	return line
}

func (d day) boundary() Span {
	return blank(dayBoundaryWidth)
}

// compassToArrow maps a compass direction to the arrow the swell or wind is
// moving toward.
func compassToArrow(dir string) string {
	switch dir {
	case "N":
		return "↓"
	case "NNE", "NE", "ENE":
		return "↙"
	case "E":
		return "←"
	case "ESE", "SE", "SSE":
		return "↖"
	case "S":
		return "↑"
	case "SSW", "SW", "WSW":
		return "↗"
	case "W":
		return "→"
	case "WNW", "NW", "NNW":
		return "↘"
	default:
		return "·"
	}
}
