package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardweaver/pkg/adapters/memory"
	"github.com/aretw0/cardweaver/pkg/core"
)

// tickClock returns a clock that moves forward one second on every call.
func tickClock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) (*core.Store, *memory.Storage) {
	t.Helper()
	storage := memory.NewStorage()
	seq := 0
	store := core.NewStore(storage,
		core.WithClock(tickClock()),
		core.WithCardIDGenerator(func() string {
			seq++
			return fmt.Sprintf("card-%d", seq)
		}),
	)
	return store, storage
}

func seedDeck(t *testing.T, store *core.Store, name string, fronts ...string) core.Deck {
	t.Helper()
	deck := core.Deck{Name: name}
	for _, f := range fronts {
		deck.Flashcards = append(deck.Flashcards, core.Flashcard{Title: f, Front: f, Back: "answer " + f})
	}
	saved, err := store.SaveDeck(context.Background(), deck)
	require.NoError(t, err)
	return saved
}

func TestStore_SaveDeck(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates New Deck", func(t *testing.T) {
		store, _ := newTestStore(t)

		deck, err := store.SaveDeck(ctx, core.Deck{Name: "Biology"})
		require.NoError(t, err)

		assert.NotEmpty(t, deck.ID)
		assert.NotNil(t, deck.Flashcards)
		assert.Empty(t, deck.Flashcards)
		assert.Equal(t, deck.CreatedAt, deck.UpdatedAt)

		got, ok, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, deck, got)
	})

	t.Run("Unknown ID Gets Fresh ID", func(t *testing.T) {
		store, _ := newTestStore(t)

		deck, err := store.SaveDeck(ctx, core.Deck{ID: "made-up", Name: "Chemistry"})
		require.NoError(t, err)
		assert.NotEqual(t, "made-up", deck.ID)
	})

	t.Run("Update Keeps ID And CreatedAt", func(t *testing.T) {
		store, _ := newTestStore(t)
		original := seedDeck(t, store, "Physics", "f=ma")

		original.Name = "Classical Physics"
		updated, err := store.SaveDeck(ctx, original)
		require.NoError(t, err)

		assert.Equal(t, original.ID, updated.ID)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(original.UpdatedAt))
		assert.Equal(t, "Classical Physics", updated.Name)
	})

	t.Run("Metadata Only Edit Preserves Cards", func(t *testing.T) {
		store, _ := newTestStore(t)
		original := seedDeck(t, store, "History", "1066", "1492")

		updated, err := store.SaveDeck(ctx, core.Deck{ID: original.ID, Name: "World History"})
		require.NoError(t, err)

		assert.Equal(t, original.Flashcards, updated.Flashcards)
		assert.Equal(t, "World History", updated.Name)
	})

	t.Run("Cards Without IDs Get Unique IDs", func(t *testing.T) {
		store, _ := newTestStore(t)

		deck, err := store.SaveDeck(ctx, core.Deck{Name: "Dup", Flashcards: []core.Flashcard{
			{ID: "x", Front: "a"}, {ID: "x", Front: "b"}, {Front: "c"},
		}})
		require.NoError(t, err)

		ids := map[string]bool{}
		for _, fc := range deck.Flashcards {
			assert.NotEmpty(t, fc.ID)
			assert.False(t, ids[fc.ID], "duplicate card id %s", fc.ID)
			ids[fc.ID] = true
			assert.Equal(t, core.StatusLearning, fc.Status)
		}
	})

	t.Run("UpdatedAt Never Precedes CreatedAt", func(t *testing.T) {
		storage := memory.NewStorage()
		now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		store := core.NewStore(storage, core.WithClock(clock))

		deck, err := store.SaveDeck(ctx, core.Deck{Name: "Clock"})
		require.NoError(t, err)

		now = now.Add(-time.Hour) // clock stepped back
		updated, err := store.SaveDeck(ctx, deck)
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
		assert.Equal(t, deck.UpdatedAt, updated.UpdatedAt)
	})
}

func TestStore_DeleteDeck(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)
	deck := seedDeck(t, store, "Keep", "a")

	t.Run("Unknown ID Is No-Op", func(t *testing.T) {
		before := storage.Raw(core.DecksKey)
		require.NoError(t, store.DeleteDeck(ctx, "does-not-exist"))
		assert.Equal(t, before, storage.Raw(core.DecksKey))
	})

	t.Run("Removes Deck And Its Cards", func(t *testing.T) {
		require.NoError(t, store.DeleteDeck(ctx, deck.ID))

		_, ok, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		decks, err := store.AllDecks(ctx)
		require.NoError(t, err)
		assert.Empty(t, decks)
	})
}

func TestStore_Flashcards(t *testing.T) {
	ctx := context.Background()

	t.Run("Add To Missing Deck", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, ok, err := store.AddFlashcardToDeck(ctx, "nope", core.Flashcard{Front: "q"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Add Appends Normalized Card", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Spanish", "hola")

		card, ok, err := store.AddFlashcardToDeck(ctx, deck.ID, core.Flashcard{Title: "adios", Front: "adios", Back: "bye"})
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotEmpty(t, card.ID)
		assert.Equal(t, core.StatusLearning, card.Status)

		got, _, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		require.Len(t, got.Flashcards, 2)
		assert.Equal(t, card, got.Flashcards[1])
	})

	t.Run("Update Status Reflects Immediately", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Math", "1+1")
		card := deck.Flashcards[0]
		require.Equal(t, core.StatusLearning, card.Status)

		card.Status = core.StatusMastered
		updated, ok, err := store.UpdateFlashcardInDeck(ctx, deck.ID, card)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, core.StatusMastered, updated.Status)

		got, _, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusMastered, got.Flashcards[0].Status)
		assert.True(t, got.UpdatedAt.After(deck.UpdatedAt))
	})

	t.Run("Update Unknown Card", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Math", "1+1")

		_, ok, err := store.UpdateFlashcardInDeck(ctx, deck.ID, core.Flashcard{ID: "ghost"})
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = store.UpdateFlashcardInDeck(ctx, "ghost-deck", deck.Flashcards[0])
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set Status", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Art", "Monet")

		card, ok, err := store.SetFlashcardStatus(ctx, deck.ID, deck.Flashcards[0].ID, core.StatusMastered)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, core.StatusMastered, card.Status)
		assert.Equal(t, "Monet", card.Front)

		_, _, err = store.SetFlashcardStatus(ctx, deck.ID, deck.Flashcards[0].ID, "forgotten")
		assert.Error(t, err)
	})

	t.Run("Delete Is Exact", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Geo", "Paris", "Rome", "Oslo")
		target := deck.Flashcards[1]

		require.NoError(t, store.DeleteFlashcardFromDeck(ctx, deck.ID, target.ID))

		got, _, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		assert.Len(t, got.Flashcards, len(deck.Flashcards)-1)
		_, found := got.Flashcard(target.ID)
		assert.False(t, found)
	})

	t.Run("Delete Last Card Leaves Empty Deck", func(t *testing.T) {
		store, _ := newTestStore(t)
		deck := seedDeck(t, store, "Solo", "only")

		require.NoError(t, store.DeleteFlashcardFromDeck(ctx, deck.ID, deck.Flashcards[0].ID))

		got, _, err := store.GetDeck(ctx, deck.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Flashcards)
	})

	t.Run("Delete Unknown Is No-Op", func(t *testing.T) {
		store, storage := newTestStore(t)
		deck := seedDeck(t, store, "Geo", "Paris")
		writes := storage.Writes()

		require.NoError(t, store.DeleteFlashcardFromDeck(ctx, deck.ID, "ghost"))
		require.NoError(t, store.DeleteFlashcardFromDeck(ctx, "ghost-deck", "ghost"))
		assert.Equal(t, writes, storage.Writes())
	})
}

func TestStore_DuplicateDeck(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	src := seedDeck(t, store, "Biology", "cell", "atom")
	_, _, err := store.SetFlashcardStatus(ctx, src.ID, src.Flashcards[0].ID, core.StatusMastered)
	require.NoError(t, err)
	src, _, err = store.GetDeck(ctx, src.ID)
	require.NoError(t, err)

	clone, ok, err := store.DuplicateDeck(ctx, src.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotEqual(t, src.ID, clone.ID)
	assert.Equal(t, "Biology (Copy)", clone.Name)
	require.Len(t, clone.Flashcards, len(src.Flashcards))
	for i, fc := range clone.Flashcards {
		orig := src.Flashcards[i]
		assert.NotEqual(t, orig.ID, fc.ID)
		assert.Equal(t, orig.Title, fc.Title)
		assert.Equal(t, orig.Front, fc.Front)
		assert.Equal(t, orig.Back, fc.Back)
		assert.Equal(t, orig.Status, fc.Status)
	}

	_, ok, err = store.DuplicateDeck(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_InsertDeck(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	existing := seedDeck(t, store, "Existing", "a")

	inserted, err := store.InsertDeck(ctx, existing)
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, inserted.ID)
	assert.NotEqual(t, existing.Flashcards[0].ID, inserted.Flashcards[0].ID)

	decks, err := store.AllDecks(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 2)
}

func TestStore_Notes(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	note, err := store.SaveNote(ctx, core.Note{Title: "Ideas", Content: "# heading"})
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	assert.NotNil(t, note.Tags)
	assert.False(t, note.IsPinned)

	note.Content = "changed"
	updated, err := store.SaveNote(ctx, note)
	require.NoError(t, err)
	assert.Equal(t, note.ID, updated.ID)
	assert.Equal(t, note.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(note.UpdatedAt))

	pinned, ok, err := store.SetNotePinned(ctx, note.ID, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, pinned.IsPinned)

	dup, ok, err := store.DuplicateNote(ctx, note.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, note.ID, dup.ID)
	assert.Equal(t, "Ideas (Copy)", dup.Title)

	require.NoError(t, store.DeleteNote(ctx, note.ID))
	require.NoError(t, store.DeleteNote(ctx, note.ID))
	_, ok, err = store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	notes, err := store.AllNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestStore_LegacyPayloadIsNormalizedOnRead(t *testing.T) {
	ctx := context.Background()
	store, storage := newTestStore(t)

	storage.Set(core.DecksKey, []byte(`[{"id":"d1","name":"Old","flashcards":[{"id":"c1","title":"t","front":"f","back":"b"}],"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`))
	storage.Set(core.NotesKey, []byte(`[{"id":"n1","title":"Old note","content":"x"}]`))

	deck, ok, err := store.GetDeck(ctx, "d1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusLearning, deck.Flashcards[0].Status)
	assert.NotNil(t, deck.Tags)

	note, ok, err := store.GetNote(ctx, "n1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, note.CreatedAt.IsZero())
	assert.False(t, note.UpdatedAt.IsZero())
}

func TestStore_StorageFaults(t *testing.T) {
	ctx := context.Background()

	t.Run("Corrupt JSON", func(t *testing.T) {
		store, storage := newTestStore(t)
		storage.Set(core.DecksKey, []byte(`{not json`))

		_, err := store.AllDecks(ctx)
		assert.ErrorIs(t, err, core.ErrCorruptCollection)

		_, err = store.SaveDeck(ctx, core.Deck{Name: "x"})
		assert.ErrorIs(t, err, core.ErrCorruptCollection)
		assert.Equal(t, []byte(`{not json`), storage.Raw(core.DecksKey), "corrupt data must not be overwritten")
	})

	t.Run("Write Failure Surfaces", func(t *testing.T) {
		store, storage := newTestStore(t)
		quota := errors.New("quota exceeded")
		storage.Fail(core.NotesKey, quota)

		_, err := store.SaveNote(ctx, core.Note{Title: "x"})
		assert.ErrorIs(t, err, quota)
	})
}

func TestStore_Subscribe(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := store.Subscribe(ctx)
	deck := seedDeck(t, store, "Events")
	require.NoError(t, store.DeleteDeck(context.Background(), deck.ID))

	for _, want := range []core.EventType{core.EventCreate, core.EventDelete} {
		select {
		case e := <-events:
			assert.Equal(t, want, e.Type)
			assert.Equal(t, core.CollectionDecks, e.Collection)
			assert.Equal(t, deck.ID, e.ID)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s event", want)
		}
	}

	state, ok := store.State().(core.StoreState)
	require.True(t, ok)
	assert.Equal(t, "memory", state.StorageType)
	assert.NotNil(t, state.LastWrite)
}
