package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cwlifecycle "github.com/aretw0/cardweaver/pkg/adapters/lifecycle"
	"github.com/aretw0/cardweaver/pkg/core"
)

func TestSourceForwardsAndCloses(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, Collection: core.CollectionDecks, ID: "d1"}
	in <- core.Event{Type: core.EventModify, Collection: core.CollectionNotes}
	in <- core.Event{Type: core.EventDelete, Collection: core.CollectionDecks, ID: "d1"}
	close(in)

	src := cwlifecycle.NewSource(in, cwlifecycle.OnlyCollection(core.CollectionDecks))
	require.NoError(t, src.Start(context.Background()))

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				assert.Len(t, got, 2)
				return
			}
			ce, isCore := e.(core.Event)
			require.True(t, isCore)
			assert.Equal(t, core.CollectionDecks, ce.Collection)
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("source did not close")
		}
	}
}

func TestSourceStopsOnCancel(t *testing.T) {
	in := make(chan core.Event)
	ctx, cancel := context.WithCancel(context.Background())
	src := cwlifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close after cancel")
	}
}
