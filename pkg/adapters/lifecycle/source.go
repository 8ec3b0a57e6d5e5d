// Package lifecycle exposes store change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cardweaver/pkg/core"
)

type changeSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	filter func(core.Event) bool
}

// SourceOption configures a change source.
type SourceOption func(*changeSource)

// OnlyCollection forwards events of one collection and drops the others.
func OnlyCollection(c core.Collection) SourceOption {
	return func(s *changeSource) {
		s.filter = func(e core.Event) bool { return e.Collection == c }
	}
}

// NewSource bridges a channel of deck and note change events to the generic
// lifecycle Event interface. The output closes when the input closes or the
// context given to Start is cancelled.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
		filter: func(core.Event) bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.filter(e) {
					continue
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
