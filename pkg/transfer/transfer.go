// Package transfer exports decks to files and imports them back.
//
// Imports accept a single deck object or an array of deck objects in JSON or
// YAML. Every record must carry a string "name" and an array "flashcards".
// Records are inserted one by one as brand-new decks: when a later record is
// invalid, the decks already inserted are kept.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Inserter stores a deck as a new entity. *core.Store satisfies it.
type Inserter interface {
	InsertDeck(ctx context.Context, deck core.Deck) (core.Deck, error)
}

// unknownDeck names records that carry no usable name.
const unknownDeck = "Unknown"

// identityFields are dropped before conversion: imported decks always get fresh
// ids and timestamps.
var identityFields = []string{"id", "createdAt", "updatedAt"}

// Export writes decks with codec. A single deck is written as an object, more
// than one as an array.
func Export(w io.Writer, codec Codec, decks ...core.Deck) error {
	if len(decks) == 0 {
		return errors.New("nothing to export")
	}
	normalized := make([]core.Deck, len(decks))
	for i, d := range decks {
		normalized[i] = core.NormalizeDeck(d)
	}
	var payload any = normalized
	if len(normalized) == 1 {
		payload = normalized[0]
	}
	if err := codec.Encode(w, payload); err != nil {
		return fmt.Errorf("failed to encode %s: %w", codec.Name(), err)
	}
	return nil
}

// ExportFile writes decks to path, choosing the codec by extension.
func ExportFile(path string, decks ...core.Deck) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Export(f, codec, decks...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import decodes r and inserts every deck record it contains. It returns the
// decks inserted before the first failure together with that failure.
func Import(ctx context.Context, store Inserter, r io.Reader, codec Codec) ([]core.Deck, error) {
	payload, err := codec.Decode(r)
	if err != nil {
		return nil, err
	}

	var records []any
	switch v := payload.(type) {
	case []any:
		records = v
	default:
		records = []any{v}
	}

	imported := make([]core.Deck, 0, len(records))
	for _, rec := range records {
		deck, err := decodeDeck(rec)
		if err != nil {
			return imported, err
		}
		saved, err := store.InsertDeck(ctx, deck)
		if err != nil {
			return imported, fmt.Errorf("failed to insert deck %q: %w", deck.Name, err)
		}
		imported = append(imported, saved)
	}
	return imported, nil
}

// ImportFile imports the decks stored at path.
func ImportFile(ctx context.Context, store Inserter, path string) ([]core.Deck, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decks, err := Import(ctx, store, f, codec)
	if err != nil {
		return decks, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return decks, nil
}

// ImportGlob imports every file matching a doublestar pattern such as
// "exports/**/*.{json,yaml}". A failing file does not stop the others; all
// failures are joined in the returned error.
func ImportGlob(ctx context.Context, store Inserter, pattern string) ([]core.Deck, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}

	var (
		all  []core.Deck
		errs []error
	)
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		decks, err := ImportFile(ctx, store, path)
		all = append(all, decks...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// decodeDeck validates one generic record and converts it into a Deck.
func decodeDeck(rec any) (core.Deck, error) {
	obj, ok := rec.(map[string]any)
	if !ok {
		return core.Deck{}, &core.ValidationError{Deck: unknownDeck, Reason: "record is not an object"}
	}

	name, ok := obj["name"].(string)
	if !ok {
		return core.Deck{}, &core.ValidationError{Deck: deckLabel(obj), Reason: `missing or non-string "name"`}
	}
	cards, ok := obj["flashcards"].([]any)
	if !ok {
		return core.Deck{}, &core.ValidationError{Deck: name, Reason: `missing or non-array "flashcards"`}
	}

	clean := withoutIdentity(obj)
	cleanCards := make([]any, len(cards))
	for i, c := range cards {
		card, ok := c.(map[string]any)
		if !ok {
			return core.Deck{}, &core.ValidationError{Deck: name, Reason: fmt.Sprintf("flashcard %d is not an object", i+1)}
		}
		cleanCards[i] = withoutIdentity(card)
	}
	clean["flashcards"] = cleanCards

	data, err := json.Marshal(clean)
	if err != nil {
		return core.Deck{}, &core.ValidationError{Deck: name, Reason: err.Error()}
	}
	var deck core.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return core.Deck{}, &core.ValidationError{Deck: name, Reason: err.Error()}
	}
	for _, fc := range deck.Flashcards {
		if fc.Status != "" && !fc.Status.Valid() {
			return core.Deck{}, &core.ValidationError{Deck: name, Reason: fmt.Sprintf("flashcard %q has unknown status %q", fc.Title, fc.Status)}
		}
	}
	return core.NormalizeDeck(deck), nil
}

// deckLabel falls back to "Unknown" when a record has no string name.
func deckLabel(obj map[string]any) string {
	if name, ok := obj["name"].(string); ok && name != "" {
		return name
	}
	return unknownDeck
}

func withoutIdentity(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, k := range identityFields {
		delete(out, k)
	}
	return out
}
