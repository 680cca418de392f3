// Package msw is the adapter for the upstream surf forecast provider.
package msw

import (
	"fmt"
	"time"

	"surfcast/internal/rating"
)

// UnitSystem selects the measurement units the provider reports in. It is
// passed through verbatim; no conversion happens on our side.
type UnitSystem string

const (
	UnitsUS UnitSystem = "us" // ft / mph / °F
	UnitsUK UnitSystem = "uk" // ft / mph / °C
	UnitsEU UnitSystem = "eu" // m / kph / °C
)

// ParseUnitSystem validates a user-supplied unit system string.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(s) {
	case UnitsUS, UnitsUK, UnitsEU:
		return UnitSystem(s), nil
	default:
		return "", fmt.Errorf("invalid unit system %q (want us, uk, or eu)", s)
	}
}

// Forecast is the ordered period sequence for one spot, tagged with the unit
// system it was fetched in.
type Forecast struct {
	SpotID    int
	Units     UnitSystem
	FetchedAt time.Time
	// Stale is set by the cache when a fetch failed and this forecast is an
	// older entry served as a fallback.
	Stale   bool
	Periods []Period
}

// Period is one timestamped forecast entry.
type Period struct {
	Timestamp      time.Time
	LocalTimestamp time.Time
	SolidStars     int
	FadedStars     int
	// Color is derived from FadedStars at fetch time; the provider does not
	// send it.
	Color     rating.Color
	Swell     Swell
	Wind      Wind
	Condition Condition
}

// Swell describes breaking wave heights and the component swells behind them.
type Swell struct {
	MinBreakingHeight    float64
	MaxBreakingHeight    float64
	AbsMaxBreakingHeight float64
	Unit                 string
	Components           SwellComponents
}

// SwellComponents breaks the swell into its contributing trains. Any of them
// may be absent for a given period.
type SwellComponents struct {
	Combined  *SwellComponent
	Primary   *SwellComponent
	Secondary *SwellComponent
}

// SwellComponent is a single swell train.
type SwellComponent struct {
	Height           float64
	Period           int
	Direction        float64
	CompassDirection string
}

// Wind is the surface wind for a period.
type Wind struct {
	Speed            int
	Direction        float64
	CompassDirection string
	Gusts            int
	Unit             string
}

// Condition carries the general weather fields for a period.
type Condition struct {
	Temperature     int
	UnitTemperature string
	Weather         string
	Pressure        int
}
