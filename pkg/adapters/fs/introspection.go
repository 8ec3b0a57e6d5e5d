package fs

import (
	"os"
	"sort"
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path          string     `json:"path"`
	ReadOnly      bool       `json:"read_only"`
	Collections   []string   `json:"collections"`
	WatcherActive bool       `json:"watcher_active"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	var collections []string
	if entries, err := os.ReadDir(s.Path); err == nil {
		for _, e := range entries {
			if key, ok := keyFor(e.Name()); ok {
				collections = append(collections, key)
			}
		}
		sort.Strings(collections)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return StorageState{
		Path:          s.Path,
		ReadOnly:      s.config.ReadOnly,
		Collections:   collections,
		WatcherActive: s.watcherActive,
		LastWrite:     s.lastWrite,
		LastEvent:     s.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)

func (s *Storage) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Storage) recordEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastEvent = &now
}
