package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	StorageType string     `json:"storage_type"`
	Subscribers int        `json:"subscribers"`
	LastWrite   *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	storageType := "unknown"
	if s.storage != nil {
		storageType = "storage"
		// Try to get component type if storage implements introspection.Component
		if comp, ok := s.storage.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return StoreState{
		StorageType: storageType,
		Subscribers: s.broker.len(),
		LastWrite:   s.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
