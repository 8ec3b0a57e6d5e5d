package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cardweaver/pkg/core"
)

func TestNormalizeFlashcard(t *testing.T) {
	t.Run("Defaults Status", func(t *testing.T) {
		fc := core.NormalizeFlashcard(core.Flashcard{ID: "a", Front: "q", Back: "a"})
		assert.Equal(t, core.StatusLearning, fc.Status)
	})

	t.Run("Keeps Status And Images", func(t *testing.T) {
		fc := core.NormalizeFlashcard(core.Flashcard{Status: core.StatusMastered, FrontImage: "data:image/png;base64,AA"})
		assert.Equal(t, core.StatusMastered, fc.Status)
		assert.Equal(t, "data:image/png;base64,AA", fc.FrontImage)
		assert.Empty(t, fc.BackImage)
	})
}

func TestNormalizeDeck(t *testing.T) {
	t.Run("Fills Missing Slices", func(t *testing.T) {
		d := core.NormalizeDeck(core.Deck{Name: "Biology"})
		assert.NotNil(t, d.Flashcards)
		assert.Empty(t, d.Flashcards)
		assert.NotNil(t, d.Tags)
		assert.Empty(t, d.Tags)
	})

	t.Run("Normalizes Every Card Without Aliasing", func(t *testing.T) {
		in := core.Deck{Flashcards: []core.Flashcard{{ID: "1"}, {ID: "2", Status: core.StatusMastered}}}
		out := core.NormalizeDeck(in)

		assert.Equal(t, core.StatusLearning, out.Flashcards[0].Status)
		assert.Equal(t, core.StatusMastered, out.Flashcards[1].Status)
		assert.Empty(t, in.Flashcards[0].Status, "input must not be mutated")
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []core.Deck{
			{},
			{Name: "x", Tags: []string{"a", "a"}},
			{Flashcards: []core.Flashcard{{ID: "1", Front: "f"}}, AccentColor: "210 90% 50%"},
		}
		for _, in := range inputs {
			once := core.NormalizeDeck(in)
			assert.Equal(t, once, core.NormalizeDeck(once))
		}
	})
}

func TestNormalizeNote(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	created := now.Add(-time.Hour)

	n := core.NormalizeNote(core.Note{Title: "t", CreatedAt: created}, now)
	assert.NotNil(t, n.Tags)
	assert.False(t, n.IsPinned)
	assert.Equal(t, created, n.CreatedAt)
	assert.Equal(t, now, n.UpdatedAt)

	blank := core.NormalizeNote(core.Note{}, now)
	assert.Equal(t, now, blank.CreatedAt)
	assert.Equal(t, now, blank.UpdatedAt)
}
