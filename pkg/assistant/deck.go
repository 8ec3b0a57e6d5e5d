package assistant

import (
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Source tells how a generated deck was produced.
type Source string

const (
	SourceTopic   Source = "topic/text"
	SourceSummary Source = "summary"
)

// descriptionExcerpt is how much of the input is quoted in a generated deck's
// description.
const descriptionExcerpt = 50

// NewDeckFromCards builds an unsaved deck draft from generated cards. Pass it to
// core.Store.InsertDeck to persist it under fresh ids.
func NewDeckFromCards(name string, source Source, input string, cards []Card) core.Deck {
	flashcards := make([]core.Flashcard, 0, len(cards))
	for _, c := range cards {
		flashcards = append(flashcards, core.Flashcard{
			Title: c.Title,
			Front: c.Front,
			Back:  c.Back,
		})
	}
	return core.NormalizeDeck(core.Deck{
		Name:        name,
		Description: fmt.Sprintf("AI-generated deck from %s: %q", source, excerpt(input, descriptionExcerpt)+"..."),
		Flashcards:  flashcards,
	})
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
