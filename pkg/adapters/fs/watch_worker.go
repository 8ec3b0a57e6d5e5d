package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/cardweaver/pkg/core"
)

const debounceWindow = 50 * time.Millisecond

type watchWorker struct {
	*worker.BaseWorker
	storage   *Storage
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	known     map[string]bool
	cancel    context.CancelFunc
}

func newWatchWorker(s *Storage, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		storage:    s,
		events:     events,
		known:      make(map[string]bool),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.storage.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.storage.Path, err)
	}
	w.scanKnown()

	w.watcher = watcher
	w.debouncer = newDebouncer(debounceWindow)
	w.storage.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.storage.Path,
		}
	})
}

// scanKnown records which collection files exist so that an atomic replace
// (which surfaces as a create) can be reported as a modification.
func (w *watchWorker) scanKnown() {
	entries, err := os.ReadDir(w.storage.Path)
	if err != nil {
		return
	}
	for _, e := range entries {
		if key, ok := keyFor(e.Name()); ok {
			w.known[key] = true
		}
	}
}

// eventFor maps an fsnotify event on a collection file to a store event.
// It returns false for files that hold no known collection.
func (w *watchWorker) eventFor(event fsnotify.Event) (core.Event, bool) {
	key, ok := keyFor(event.Name)
	if !ok {
		return core.Event{}, false
	}
	collection, ok := core.CollectionFor(key)
	if !ok {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
		delete(w.known, key)
	case event.Has(fsnotify.Create):
		t = core.EventCreate
		if w.known[key] {
			t = core.EventModify
		}
		w.known[key] = true
	case event.Has(fsnotify.Write):
		t = core.EventModify
		w.known[key] = true
	default:
		return core.Event{}, false
	}

	return core.Event{
		Type:       t,
		Collection: collection,
		Timestamp:  time.Now().Unix(),
	}, true
}

func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.storage.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	e, ok := w.eventFor(event)
	if !ok {
		return false
	}
	w.storage.recordEvent()
	w.sendEvent(ctx, e)
	return true
}

// sendEvent enqueues an event via the debouncer, protecting against channel
// closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.storage.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.storage.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Wait for in-flight debounce timers before the events channel can be closed.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.storage.reportError(fmt.Errorf("fsnotify: %w", wErr))
		}
	}
}
