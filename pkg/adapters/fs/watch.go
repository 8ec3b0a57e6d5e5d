package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/cardweaver/pkg/core"
)

// watchBackoff bounds how often a failing watcher is restarted.
var watchBackoff = supervisor.Backoff{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	Multiplier:      2,
	ResetDuration:   30 * time.Second,
	MaxRestarts:     5,
	MaxDuration:     time.Minute,
}

func watcherSpec(s *Storage, events chan<- core.Event) supervisor.Spec {
	return supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(s, events), nil
		},
		Backoff:       watchBackoff,
		RestartPolicy: supervisor.RestartOnFailure,
	}
}

func startWatch(ctx context.Context, s *Storage) (<-chan core.Event, error) {
	events := make(chan core.Event, 16)

	sup := supervisor.New("cardweaver-watch", supervisor.StrategyOneForOne, watcherSpec(s, events))
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := sup.Stop(stopCtx)
		close(events)
		if err != nil {
			return fmt.Errorf("failed to stop watcher: %w", err)
		}
		return nil
	}, lifecycle.WithErrorHandler(s.reportError))

	return events, nil
}
