package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

const defaultEventBuffer = 100

// broker fans store events out to subscribers. Publishing never blocks a mutation:
// a subscriber whose buffer is full misses the event.
type broker struct {
	mu         sync.RWMutex
	subs       map[int]chan Event
	nextID     int
	bufferSize int
	logger     *slog.Logger
}

func newBroker() *broker {
	return &broker{
		subs:       make(map[int]chan Event),
		bufferSize: defaultEventBuffer,
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan Event {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.bufferSize)
	b.subs[id] = ch
	b.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
		return nil
	})
	return ch
}

func (b *broker) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			if b.logger != nil {
				b.logger.Debug("event dropped, subscriber is slow", "event", e.String())
			}
		}
	}
}

func (b *broker) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscribe returns a channel receiving every change made through this Store until
// ctx is cancelled, at which point the channel is closed.
func (s *Store) Subscribe(ctx context.Context) <-chan Event {
	return s.broker.subscribe(ctx)
}
