package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardweaver/pkg/adapters/memory"
	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/transfer"
)

func newStore() *core.Store {
	return core.NewStore(memory.NewStorage())
}

func TestImport_ArrayGetsFreshIDs(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	src := `[{
		"id": "src-deck",
		"name": "Biology",
		"createdAt": "2020-01-01T00:00:00Z",
		"flashcards": [
			{"id": "src-1", "title": "Cell", "front": "Unit of life?", "back": "Cell"},
			{"id": "src-2", "title": "DNA", "front": "Carrier of genes?", "back": "DNA", "status": "mastered"}
		]
	}]`

	decks, err := transfer.Import(ctx, store, strings.NewReader(src), transfer.JSONCodec{})
	require.NoError(t, err)
	require.Len(t, decks, 1)

	all, err := store.AllDecks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.NotEqual(t, "src-deck", got.ID)
	assert.Equal(t, "Biology", got.Name)
	assert.True(t, got.CreatedAt.Year() > 2020)
	require.Len(t, got.Flashcards, 2)
	for _, fc := range got.Flashcards {
		assert.NotContains(t, []string{"src-1", "src-2", "src-deck"}, fc.ID)
	}
	assert.Equal(t, core.StatusLearning, got.Flashcards[0].Status)
	assert.Equal(t, core.StatusMastered, got.Flashcards[1].Status)
	assert.NotNil(t, got.Tags)
}

func TestImport_SingleObject(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	decks, err := transfer.Import(ctx, store, strings.NewReader(`{"name":"Solo","flashcards":[]}`), transfer.JSONCodec{})
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Empty(t, decks[0].Flashcards)
}

func TestImport_Validation(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantDeck string
	}{
		{"Missing Name", `{"flashcards": []}`, "Unknown"},
		{"Non String Name", `{"name": 7, "flashcards": []}`, "Unknown"},
		{"Missing Flashcards", `{"name": "Chem"}`, "Chem"},
		{"Flashcards Not Array", `{"name": "Chem", "flashcards": {}}`, "Chem"},
		{"Card Not Object", `{"name": "Chem", "flashcards": ["oops"]}`, "Chem"},
		{"Bad Status", `{"name": "Chem", "flashcards": [{"title": "x", "status": "forgotten"}]}`, "Chem"},
		{"Scalar Record", `[42]`, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			_, err := transfer.Import(context.Background(), store, strings.NewReader(tt.payload), transfer.JSONCodec{})
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantDeck, vErr.Deck)

			all, err := store.AllDecks(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestImport_PartialCommit(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	src := `[{"name":"Good","flashcards":[]},{"flashcards":[]},{"name":"Never","flashcards":[]}]`
	decks, err := transfer.Import(ctx, store, strings.NewReader(src), transfer.JSONCodec{})
	assert.ErrorIs(t, err, core.ErrValidation)
	require.Len(t, decks, 1)

	all, err := store.AllDecks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Name)
}

func TestImport_InvalidSyntax(t *testing.T) {
	_, err := transfer.Import(context.Background(), newStore(), strings.NewReader(`{`), transfer.JSONCodec{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrValidation)
}

func TestExportImport_YAML(t *testing.T) {
	ctx := context.Background()
	source := newStore()
	deck, err := source.SaveDeck(ctx, core.Deck{
		Name: "Spanish", Tags: []string{"language"},
		Flashcards: []core.Flashcard{{Title: "Hola", Front: "Hola", Back: "Hello"}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, transfer.Export(&buf, transfer.YAMLCodec{}, deck))
	assert.Contains(t, buf.String(), "name: Spanish")
	assert.Contains(t, buf.String(), "flashcards:")

	target := newStore()
	decks, err := transfer.Import(ctx, target, &buf, transfer.YAMLCodec{})
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, deck.Name, decks[0].Name)
	assert.Equal(t, deck.Tags, decks[0].Tags)
	assert.Equal(t, deck.Flashcards[0].Front, decks[0].Flashcards[0].Front)
}

func TestImport_YAMLUnquotedScalars(t *testing.T) {
	ctx := context.Background()
	src := `
name: 1848
description: revolutions
tags: [2024, history]
flashcards:
  - title: 42
    front: French Revolution began?
    back: 1789
  - front: Is the Earth round?
    back: yes
    status: mastered
  - front: Pi to two places?
    back: 3.14
`
	decks, err := transfer.Import(ctx, newStore(), strings.NewReader(src), transfer.YAMLCodec{})
	require.NoError(t, err)
	require.Len(t, decks, 1)

	got := decks[0]
	assert.Equal(t, "1848", got.Name)
	assert.Equal(t, []string{"2024", "history"}, got.Tags)
	require.Len(t, got.Flashcards, 3)
	assert.Equal(t, "42", got.Flashcards[0].Title)
	assert.Equal(t, "1789", got.Flashcards[0].Back)
	assert.Equal(t, "yes", got.Flashcards[1].Back)
	assert.Equal(t, core.StatusMastered, got.Flashcards[1].Status)
	assert.Equal(t, "3.14", got.Flashcards[2].Back)
}

func TestExport_ManyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, transfer.Export(&buf, transfer.JSONCodec{}, core.Deck{Name: "a"}, core.Deck{Name: "b"}))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "["))

	assert.Error(t, transfer.Export(&buf, transfer.JSONCodec{}))
}

func TestImportGlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))

	require.NoError(t, transfer.ExportFile(filepath.Join(dir, "a.json"), core.Deck{Name: "A"}))
	require.NoError(t, transfer.ExportFile(filepath.Join(dir, "nested", "b.yaml"), core.Deck{Name: "B"}, core.Deck{Name: "C"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "bad.json"), []byte(`{"name":"Bad"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))

	store := newStore()
	decks, err := transfer.ImportGlob(ctx, store, filepath.Join(dir, "**", "*.{json,yaml}"))
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "bad.json")
	assert.Len(t, decks, 3)

	_, err = transfer.ImportGlob(ctx, store, filepath.Join(dir, "*.csv"))
	assert.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	for path, want := range map[string]string{"x.json": "json", "x.YAML": "yaml", "x.yml": "yaml"} {
		c, err := transfer.CodecFor(path)
		require.NoError(t, err)
		assert.Equal(t, want, c.Name())
	}
	_, err := transfer.CodecFor("deck.csv")
	assert.Error(t, err)
}
