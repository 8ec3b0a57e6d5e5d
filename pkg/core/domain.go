// Package core holds the domain of cardweaver: decks, flashcards and notes,
// the rules that normalize them and the Store that owns them.
package core

import "time"

// Status is the mastery status of a flashcard.
type Status string

const (
	StatusLearning Status = "learning"
	StatusMastered Status = "mastered"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusLearning || s == StatusMastered
}

// Flashcard is a question/answer pair owned by exactly one Deck.
// Front and Back may carry lightweight markup. FrontImage and BackImage hold an
// image payload reference (usually a data URI) and are left empty when absent.
type Flashcard struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Front      string `json:"front" yaml:"front"`
	Back       string `json:"back" yaml:"back"`
	Status     Status `json:"status,omitempty" yaml:"status,omitempty"`
	FrontImage string `json:"frontImage,omitempty" yaml:"frontImage,omitempty"`
	BackImage  string `json:"backImage,omitempty" yaml:"backImage,omitempty"`
}

// Deck is a named, ordered collection of flashcards.
type Deck struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Flashcards  []Flashcard `json:"flashcards" yaml:"flashcards"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" yaml:"updatedAt"`
	AccentColor string      `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Flashcard returns the card with the given id.
func (d Deck) Flashcard(id string) (Flashcard, bool) {
	for _, fc := range d.Flashcards {
		if fc.ID == id {
			return fc, true
		}
	}
	return Flashcard{}, false
}

// Note is an independent freeform text record.
type Note struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	AccentColor string    `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
	IsPinned    bool      `json:"isPinned,omitempty" yaml:"isPinned,omitempty"`
}

// Collection names one of the two persisted collections.
type Collection string

const (
	CollectionDecks Collection = "decks"
	CollectionNotes Collection = "notes"
)

// EventType represents the type of change in a collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to an entity, or to a whole collection when ID is empty
// (for instance when the backing file was edited outside of the Store).
type Event struct {
	Type       EventType
	Collection Collection
	ID         string
	Timestamp  int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type) + " " + string(e.Collection)
	}
	return string(e.Type) + " " + string(e.Collection) + "/" + e.ID
}
