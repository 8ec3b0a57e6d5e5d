package fs

import (
	"sync"
	"time"

	"github.com/aretw0/cardweaver/pkg/core"
)

// debouncer coalesces bursts of events per collection into a single event
// delivered once the collection has been quiet for delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[core.Collection]*time.Timer
	pending map[core.Collection]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[core.Collection]*time.Timer),
		pending: make(map[core.Collection]core.Event),
	}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	key := e.Collection
	if prev, ok := d.pending[key]; ok {
		e = mergeEvents(prev, e)
	}
	d.pending[key] = e

	if t, ok := d.timers[key]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}

	d.wg.Add(1)
	var t *time.Timer
	// The callback takes d.mu first, so t is assigned before it is read.
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev, ok := d.pending[key]
		delete(d.pending, key)
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		if ok {
			fire(ev)
		}
	})
	d.timers[key] = t
}

// stopAndWait drops pending events and waits up to timeout for callbacks that
// are already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	clear(d.pending)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// mergeEvents folds next into an event still waiting to be delivered.
func mergeEvents(prev, next core.Event) core.Event {
	switch {
	case prev.Type == core.EventCreate && next.Type == core.EventModify:
		next.Type = core.EventCreate
	case prev.Type == core.EventDelete && next.Type == core.EventCreate:
		next.Type = core.EventModify
	}
	return next
}
