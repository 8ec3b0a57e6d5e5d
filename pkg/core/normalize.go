package core

import "time"

// NormalizeFlashcard fills the status of a card with StatusLearning when it is absent.
// Images are kept as provided.
func NormalizeFlashcard(fc Flashcard) Flashcard {
	if fc.Status == "" {
		fc.Status = StatusLearning
	}
	return fc
}

// NormalizeDeck ensures the flashcards and tags slices are present and every card is
// normalized. The returned deck never shares slices with the input.
func NormalizeDeck(d Deck) Deck {
	cards := make([]Flashcard, len(d.Flashcards))
	for i, fc := range d.Flashcards {
		cards[i] = NormalizeFlashcard(fc)
	}
	d.Flashcards = cards
	d.Tags = cloneTags(d.Tags)
	return d
}

// NormalizeNote ensures tags are present and both timestamps are set, using now for
// the missing ones.
func NormalizeNote(n Note, now time.Time) Note {
	n.Tags = cloneTags(n.Tags)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}
	return n
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
