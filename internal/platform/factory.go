package platform

import (
	"context"

	"github.com/aretw0/cardweaver/pkg/core"
)

// New initializes the storage and wires it into a Store.
//
//	store, err := platform.New(ctx, ".cardweaver", platform.WithAutoInit(true))
//
// The caller closes the store when done.
func New(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	storage, err := Init(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return core.NewStore(storage,
		core.WithLogger(o.log()),
		core.WithEventBuffer(o.eventBuffer),
	), nil
}
