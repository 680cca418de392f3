package msw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"surfcast/internal/rating"
)

// Typed upstream failures. The adapter classifies, it does not retry; retry
// policy belongs to the caller.
var (
	ErrTimeout     = errors.New("upstream request timed out")
	ErrRateLimited = errors.New("upstream rate limited")
	ErrInvalidSpot = errors.New("upstream does not know this spot id")
	ErrMalformed   = errors.New("upstream response did not parse")
)

// ProviderError reports a non-2xx upstream status outside the cases above.
type ProviderError struct {
	Status int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// fields is the subset of the provider payload this service consumes. Asking
// for just these keeps responses small.
const fields = "timestamp,localTimestamp,solidRating,fadedRating,swell.*,wind.*,condition.*"

// Client fetches forecasts from the upstream provider. A circuit breaker
// sheds load when the provider is failing; an open circuit surfaces as
// ErrRateLimited since from the caller's view we are throttling ourselves.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a provider client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: "https://magicseaweed.com/api",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "surfcast/1.0",
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "msw",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// Fetch issues exactly one request for the given spot and unit system and
// returns the parsed forecast with each period's color classification
// annotated.
func (c *Client) Fetch(ctx context.Context, spotID int, units UnitSystem) (*Forecast, error) {
	reqURL := fmt.Sprintf("%s/%s/forecast/?%s", c.baseURL, c.apiKey, url.Values{
		"spot_id": {fmt.Sprintf("%d", spotID)},
		"units":   {string(units)},
		"fields":  {fields},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building forecast request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetch(req, spotID, units)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrRateLimited
		}
		return nil, err
	}
	return result.(*Forecast), nil
}

func (c *Client) doFetch(req *http.Request, spotID int, units UnitSystem) (*Forecast, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parse
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, ErrInvalidSpot
	default:
		return nil, &ProviderError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading forecast response: %w", err)
	}

	var periods []wirePeriod
	if err := json.Unmarshal(body, &periods); err != nil {
		// The provider reports unknown spot ids as a 200 with an error
		// object instead of the period array.
		var errResp struct {
			ErrorResponse *struct {
				Code int `json:"code"`
			} `json:"error_response"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.ErrorResponse != nil {
			return nil, ErrInvalidSpot
		}
		return nil, ErrMalformed
	}

	fc := &Forecast{
		SpotID:    spotID,
		Units:     units,
		FetchedAt: time.Now().UTC(),
		Periods:   make([]Period, 0, len(periods)),
	}
	for _, wp := range periods {
		fc.Periods = append(fc.Periods, wp.toPeriod())
	}
	return fc, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// wirePeriod mirrors the provider's JSON for one forecast period.
type wirePeriod struct {
	Timestamp      int64 `json:"timestamp"`
	LocalTimestamp int64 `json:"localTimestamp"`
	SolidRating    int   `json:"solidRating"`
	FadedRating    int   `json:"fadedRating"`
	Swell          struct {
		MinBreakingHeight    float64 `json:"minBreakingHeight"`
		MaxBreakingHeight    float64 `json:"maxBreakingHeight"`
		AbsMaxBreakingHeight float64 `json:"absMaxBreakingHeight"`
		Unit                 string  `json:"unit"`
		Components           struct {
			Combined  *wireSwellComponent `json:"combined"`
			Primary   *wireSwellComponent `json:"primary"`
			Secondary *wireSwellComponent `json:"secondary"`
		} `json:"components"`
	} `json:"swell"`
	Wind struct {
		Speed            int     `json:"speed"`
		Direction        float64 `json:"direction"`
		CompassDirection string  `json:"compassDirection"`
		Gusts            int     `json:"gusts"`
		Unit             string  `json:"unit"`
	} `json:"wind"`
	Condition struct {
		Temperature     int    `json:"temperature"`
		UnitTemperature string `json:"unitTemperature"`
		Weather         string `json:"weather"`
		Pressure        int    `json:"pressure"`
	} `json:"condition"`
}

type wireSwellComponent struct {
	Height           float64 `json:"height"`
	Period           int     `json:"period"`
	Direction        float64 `json:"direction"`
	CompassDirection string  `json:"compassDirection"`
}

func (wp wirePeriod) toPeriod() Period {
	p := Period{
		Timestamp:      time.Unix(wp.Timestamp, 0).UTC(),
		LocalTimestamp: time.Unix(wp.LocalTimestamp, 0).UTC(),
		SolidStars:     wp.SolidRating,
		FadedStars:     wp.FadedRating,
		Color:          rating.Classify(wp.FadedRating),
		Swell: Swell{
			MinBreakingHeight:    wp.Swell.MinBreakingHeight,
			MaxBreakingHeight:    wp.Swell.MaxBreakingHeight,
			AbsMaxBreakingHeight: wp.Swell.AbsMaxBreakingHeight,
			Unit:                 wp.Swell.Unit,
			Components: SwellComponents{
				Combined:  wp.Swell.Components.Combined.toComponent(),
				Primary:   wp.Swell.Components.Primary.toComponent(),
				Secondary: wp.Swell.Components.Secondary.toComponent(),
			},
		},
		Wind: Wind{
			Speed:            wp.Wind.Speed,
			Direction:        wp.Wind.Direction,
			CompassDirection: wp.Wind.CompassDirection,
			Gusts:            wp.Wind.Gusts,
			Unit:             wp.Wind.Unit,
		},
		Condition: Condition{
			Temperature:     wp.Condition.Temperature,
			UnitTemperature: wp.Condition.UnitTemperature,
			Weather:         wp.Condition.Weather,
			Pressure:        wp.Condition.Pressure,
		},
	}
	return p
}

func (w *wireSwellComponent) toComponent() *SwellComponent {
	if w == nil {
		return nil
	}
	return &SwellComponent{
		Height:           w.Height,
		Period:           w.Period,
		Direction:        w.Direction,
		CompassDirection: w.CompassDirection,
	}
}
