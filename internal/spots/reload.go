package spots

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
)

// Reloader owns the current spot index and periodically rebuilds it from the
// snapshot file, swapping the new index in atomically. The crawler rewrites
// the snapshot out of band; a failed reload keeps the previous index serving.
type Reloader struct {
	path      string
	interval  time.Duration
	current   atomic.Pointer[Index]
	scheduler *gocron.Scheduler
}

// NewReloader loads the snapshot once, failing if it is missing or malformed,
// and prepares periodic refresh at the given interval. An interval <= 0
// disables refresh.
func NewReloader(path string, interval time.Duration) (*Reloader, error) {
	ix, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}

	r := &Reloader{
		path:      path,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	r.current.Store(ix)
	return r, nil
}

// Index returns the current index. The returned value is immutable; requests
// in flight during a refresh keep whichever index they started with.
func (r *Reloader) Index() *Index {
	return r.current.Load()
}

// Start schedules periodic snapshot reloads.
func (r *Reloader) Start() error {
	if r.interval <= 0 {
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(func() {
		ix, err := LoadSnapshot(r.path)
		if err != nil {
			log.Printf("spots: snapshot reload failed, keeping previous index: %v", err)
			return
		}
		r.current.Store(ix)
		log.Printf("spots: reloaded snapshot with %d spots", ix.Len())
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop cancels future reloads.
func (r *Reloader) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
