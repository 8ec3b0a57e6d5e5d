package core

import "context"

// Storage keys under which the two collections are persisted.
const (
	DecksKey = "cardWeaverDecks"
	NotesKey = "cardWeaverNotes"
)

// Storage defines the contract of the host key-value facility the Store persists to.
// Each key holds one whole collection encoded as a JSON array; there are no partial
// writes. Adhering to this interface keeps the Store independent of the underlying
// mechanism (files, SQL, memory).
type Storage interface {
	// Read returns the raw bytes stored under key. The boolean is false when the key
	// has never been written.
	Read(ctx context.Context, key string) ([]byte, bool, error)

	// Write replaces the bytes stored under key.
	Write(ctx context.Context, key string, data []byte) error

	// Initialize ensures the underlying storage is ready (create directories, migrate schema).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by storages that can report changes made outside of the Store.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// CollectionFor maps a storage key back to its collection.
func CollectionFor(key string) (Collection, bool) {
	switch key {
	case DecksKey:
		return CollectionDecks, true
	case NotesKey:
		return CollectionNotes, true
	}
	return "", false
}
