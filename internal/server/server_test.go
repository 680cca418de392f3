package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surfcast/internal/cache"
	"surfcast/internal/msw"
	"surfcast/internal/spots"
)

type staticSource struct {
	ix *spots.Index
}

func (s staticSource) Index() *spots.Index { return s.ix }

type stubFetcher struct {
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, spotID int, units msw.UnitSystem) (*msw.Forecast, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &msw.Forecast{
		SpotID:    spotID,
		Units:     units,
		FetchedAt: time.Now(),
		Periods: []msw.Period{
			{
				Timestamp:      time.Date(2024, 6, 6, 12, 0, 0, 0, time.UTC),
				LocalTimestamp: time.Date(2024, 6, 6, 8, 0, 0, 0, time.UTC),
				Swell: msw.Swell{
					MinBreakingHeight: 2,
					MaxBreakingHeight: 4,
					Unit:              "ft",
				},
				Wind: msw.Wind{Speed: 10, Direction: 180, CompassDirection: "S", Unit: "mph"},
			},
		},
	}, nil
}

func testIndex(t *testing.T) *spots.Index {
	t.Helper()
	ix, err := spots.NewIndex([]spots.Spot{
		{ID: 450, Name: "Folly Beach", Aliases: []string{"folly"}, Latitude: 32.655, Longitude: -79.941},
		{ID: 358, Name: "Pipeline", Latitude: 21.665, Longitude: -158.053},
		{ID: 1001, Name: "Long Beach", Latitude: 33.77, Longitude: -118.19},
		{ID: 2002, Name: "Long Beach", Latitude: 40.588, Longitude: -73.658},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return ix
}

func newTestServer(t *testing.T, fetcher cache.Fetcher) *Server {
	t.Helper()
	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	return New(staticSource{ix: testIndex(t)}, cache.New(fetcher), msw.UnitsUS)
}

func doRequest(t *testing.T, s *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	resp.Body.Close()
	return resp, string(body)
}

func TestSpotForecastByAlias(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/folly", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain for curl", ct)
	}
	if !strings.Contains(body, "Folly Beach") {
		t.Errorf("body missing spot name:\n%s", body)
	}
	if !strings.Contains(body, "\x1b[") {
		t.Error("terminal output should carry ANSI escapes")
	}
}

func TestBrowserGetsHTML(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/pipeline", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh)")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html for a browser", ct)
	}
	if !strings.Contains(body, "<pre>") {
		t.Error("HTML output should wrap the view in <pre>")
	}
}

func TestFormatQueryOverridesUserAgent(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/pipeline?format=terminal", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if strings.Contains(body, "<pre>") {
		t.Error("format=terminal should suppress HTML")
	}
}

func TestUnknownSpotIs404(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/atlantis", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "atlantis") {
		t.Errorf("404 body should echo the query, got:\n%s", body)
	}
}

func TestAmbiguousSpotIs300WithCandidates(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/long%20beach", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusMultipleChoices {
		t.Fatalf("status = %d, want 300", resp.StatusCode)
	}
	for _, id := range []string{"1001", "2002"} {
		if !strings.Contains(body, id) {
			t.Errorf("candidate list missing id %s:\n%s", id, body)
		}
	}
}

func TestSpotDirectory(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/spots", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"Folly Beach", "Pipeline", "450", "358"} {
		if !strings.Contains(body, want) {
			t.Errorf("directory missing %q", want)
		}
	}
}

func TestGeolocateNearestSpot(t *testing.T) {
	s := newTestServer(t, nil)

	// Charleston harbor, closest to Folly Beach.
	req := httptest.NewRequest(http.MethodGet, "/?lat=32.78&lon=-79.93", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Folly Beach") {
		t.Errorf("expected nearest spot Folly Beach, got:\n%s", body)
	}
}

func TestRootWithoutCoordsShowsUsage(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "curl/8.4.0")
	resp, body := doRequest(t, s, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "/spots") {
		t.Errorf("usage should mention /spots:\n%s", body)
	}
}

func TestBadCoordinatesAre400(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{"/?lat=abc&lon=1", "/?lat=95&lon=0", "/?lat=10&lon=200"} {
		resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestInvalidUnitsAre400(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/folly?units=metricish", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProviderFailureIs502(t *testing.T) {
	s := newTestServer(t, &stubFetcher{err: errors.New("connection refused")})

	resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/folly", nil))
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestProviderRejectedSpotIs404(t *testing.T) {
	s := newTestServer(t, &stubFetcher{err: msw.ErrInvalidSpot})

	resp, _ := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/folly", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Errorf("health body = %s", body)
	}
}
