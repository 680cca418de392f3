package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"surfcast/internal/msw"
	"surfcast/internal/rating"
)

// stubFetcher counts upstream calls and returns a canned forecast or error.
type stubFetcher struct {
	mu    sync.Mutex
	calls int32
	err   error
	delay time.Duration
}

func (f *stubFetcher) Fetch(ctx context.Context, spotID int, units msw.UnitSystem) (*msw.Forecast, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &msw.Forecast{
		SpotID:    spotID,
		Units:     units,
		FetchedAt: time.Now().UTC(),
		Periods: []msw.Period{
			{FadedStars: 0, Color: rating.Green},
			{FadedStars: 2, Color: rating.Blue},
			{FadedStars: 4, Color: rating.Red},
		},
	}, nil
}

func (f *stubFetcher) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func (f *stubFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2022, 6, 6, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetOrFetchFreshness(t *testing.T) {
	fetcher := &stubFetcher{}
	clock := newFakeClock()
	c := New(fetcher, withNow(clock.Now))

	ctx := context.Background()

	fc, err := c.GetOrFetch(ctx, 450, msw.UnitsUS)
	if err != nil {
		t.Fatalf("GetOrFetch() error = %v", err)
	}
	if fc.Stale {
		t.Error("fresh fetch flagged stale")
	}
	if got := []rating.Color{fc.Periods[0].Color, fc.Periods[1].Color, fc.Periods[2].Color}; got[0] != rating.Green || got[1] != rating.Blue || got[2] != rating.Red {
		t.Errorf("period colors = %v, want [Green Blue Red]", got)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", fetcher.callCount())
	}

	// 2h59m later: still fresh, no upstream call.
	clock.Advance(2*time.Hour + 59*time.Minute)
	if _, err := c.GetOrFetch(ctx, 450, msw.UnitsUS); err != nil {
		t.Fatalf("GetOrFetch() error = %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("calls after 2h59m = %d, want 1", fetcher.callCount())
	}

	// 3h01m total: stale, exactly one new upstream call.
	clock.Advance(2 * time.Minute)
	if _, err := c.GetOrFetch(ctx, 450, msw.UnitsUS); err != nil {
		t.Fatalf("GetOrFetch() error = %v", err)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("calls after 3h01m = %d, want 2", fetcher.callCount())
	}
}

func TestGetOrFetchDistinctKeys(t *testing.T) {
	fetcher := &stubFetcher{}
	c := New(fetcher)
	ctx := context.Background()

	if _, err := c.GetOrFetch(ctx, 450, msw.UnitsUS); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrFetch(ctx, 450, msw.UnitsEU); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrFetch(ctx, 4203, msw.UnitsUS); err != nil {
		t.Fatal(err)
	}

	if fetcher.callCount() != 3 {
		t.Errorf("calls = %d, want 3 (one per key)", fetcher.callCount())
	}
}

func TestGetOrFetchSingleFlight(t *testing.T) {
	fetcher := &stubFetcher{delay: 50 * time.Millisecond}
	c := New(fetcher)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	results := make([]*msw.Forecast, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(ctx, 450, msw.UnitsUS)
		}(i)
	}
	wg.Wait()

	if fetcher.callCount() != 1 {
		t.Errorf("calls = %d, want 1 for %d concurrent callers", fetcher.callCount(), n)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if results[i] == nil || len(results[i].Periods) != 3 {
			t.Errorf("caller %d got %+v", i, results[i])
		}
	}
}

func TestGetOrFetchSharedFailure(t *testing.T) {
	fetcher := &stubFetcher{delay: 50 * time.Millisecond}
	fetcher.setErr(msw.ErrTimeout)
	c := New(fetcher)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrFetch(ctx, 450, msw.UnitsUS)
		}(i)
	}
	wg.Wait()

	if fetcher.callCount() != 1 {
		t.Errorf("calls = %d, want 1", fetcher.callCount())
	}
	for i := 0; i < n; i++ {
		if !errors.Is(errs[i], msw.ErrTimeout) {
			t.Errorf("caller %d error = %v, want ErrTimeout", i, errs[i])
		}
	}
}

func TestGetOrFetchServesStaleOnError(t *testing.T) {
	fetcher := &stubFetcher{}
	clock := newFakeClock()
	c := New(fetcher, withNow(clock.Now))
	ctx := context.Background()

	if _, err := c.GetOrFetch(ctx, 450, msw.UnitsUS); err != nil {
		t.Fatal(err)
	}

	clock.Advance(4 * time.Hour)
	fetcher.setErr(msw.ErrRateLimited)

	fc, err := c.GetOrFetch(ctx, 450, msw.UnitsUS)
	if err != nil {
		t.Fatalf("GetOrFetch() error = %v, want stale fallback", err)
	}
	if !fc.Stale {
		t.Error("fallback forecast not flagged stale")
	}

	// The stale entry survived the failure, so recovery serves fresh data.
	fetcher.setErr(nil)
	fc, err = c.GetOrFetch(ctx, 450, msw.UnitsUS)
	if err != nil {
		t.Fatalf("GetOrFetch() after recovery error = %v", err)
	}
	if fc.Stale {
		t.Error("recovered fetch flagged stale")
	}
	if fetcher.callCount() != 3 {
		t.Errorf("calls = %d, want 3", fetcher.callCount())
	}
}

func TestGetOrFetchFailureWithoutEntry(t *testing.T) {
	fetcher := &stubFetcher{}
	fetcher.setErr(msw.ErrInvalidSpot)
	c := New(fetcher)

	if _, err := c.GetOrFetch(context.Background(), 450, msw.UnitsUS); !errors.Is(err, msw.ErrInvalidSpot) {
		t.Errorf("GetOrFetch() error = %v, want ErrInvalidSpot", err)
	}
}

func TestGetOrFetchWaiterCancellation(t *testing.T) {
	fetcher := &stubFetcher{delay: 100 * time.Millisecond}
	c := New(fetcher)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetch(ctx, 450, msw.UnitsUS)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter error = %v, want context.Canceled", err)
	}

	// The underlying fetch keeps going and populates the cache.
	time.Sleep(150 * time.Millisecond)
	if _, err := c.GetOrFetch(context.Background(), 450, msw.UnitsUS); err != nil {
		t.Fatalf("GetOrFetch() after cancellation error = %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("calls = %d, want 1 (fetch survived waiter cancellation)", fetcher.callCount())
	}
}
