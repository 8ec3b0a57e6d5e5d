package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// cardIDSize is the length of generated flashcard ids. Card ids only need to be
// unique within their deck, so they are kept short for the command line.
const cardIDSize = 12

// Store owns the Decks and Notes collections.
//
// Every operation reads the entire collection from Storage, mutates it in memory
// and writes the entire collection back. Entities are normalized on every read and
// every write. Lookups that find nothing report false instead of an error; storage
// faults and corrupt persisted data are always returned.
type Store struct {
	storage   Storage
	now       func() time.Time
	newID     func() string
	newCardID func() string
	logger    *slog.Logger

	// mu serializes read-modify-write cycles.
	mu sync.Mutex

	broker *broker

	stateMu   sync.RWMutex
	lastWrite *time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the id generator for decks and notes.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithCardIDGenerator overrides the id generator for flashcards.
func WithCardIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newCardID = fn
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithEventBuffer sets the buffer size of each subscriber channel.
// Zero means default (100).
func WithEventBuffer(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.broker.bufferSize = size
		}
	}
}

// NewStore creates a Store persisting to storage.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage:   storage,
		now:       time.Now,
		newID:     uuid.NewString,
		newCardID: newCardID,
		logger:    slog.New(slog.DiscardHandler),
		broker:    newBroker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.broker.logger = s.logger
	return s
}

func newCardID() string {
	id, err := gonanoid.New(cardIDSize)
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// --- Decks ---

// AllDecks returns every deck, normalized, in persisted order.
func (s *Store) AllDecks(ctx context.Context) ([]Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDecks(ctx)
}

// GetDeck retrieves a deck by id.
func (s *Store) GetDeck(ctx context.Context, id string) (Deck, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDeck(ctx, id)
}

// SaveDeck creates or updates a deck.
//
// A deck whose id is empty or unknown is inserted under a fresh id with
// createdAt = updatedAt = now. A known deck keeps its createdAt and gets a new
// updatedAt. When the caller sends no flashcards for a deck that already has some,
// the stored flashcards are kept, so metadata-only edits need not resend the cards.
func (s *Store) SaveDeck(ctx context.Context, deck Deck) (Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDeck(ctx, deck, true)
}

// InsertDeck stores deck as a brand-new entity: the deck and every flashcard get
// fresh ids whatever ids the input carries.
func (s *Store) InsertDeck(ctx context.Context, deck Deck) (Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDeck(ctx, detachDeck(deck), false)
}

// DuplicateDeck clones a deck under a new id, naming it "<name> (Copy)".
func (s *Store) DuplicateDeck(ctx context.Context, id string) (Deck, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok, err := s.getDeck(ctx, id)
	if err != nil || !ok {
		return Deck{}, ok, err
	}
	clone := detachDeck(src)
	clone.Name = src.Name + " (Copy)"

	saved, err := s.saveDeck(ctx, clone, false)
	if err != nil {
		return Deck{}, false, err
	}
	return saved, true, nil
}

// DeleteDeck removes a deck and all of its flashcards. Unknown ids are ignored.
func (s *Store) DeleteDeck(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.readDecks(ctx)
	if err != nil {
		return err
	}
	idx := indexOfDeck(decks, id)
	if idx < 0 {
		return nil
	}
	decks = append(decks[:idx], decks[idx+1:]...)
	if err := s.write(ctx, DecksKey, decks); err != nil {
		return err
	}
	s.publish(EventDelete, CollectionDecks, id)
	return nil
}

// --- Flashcards ---

// AddFlashcardToDeck appends a card under a fresh id. It reports false when the
// deck does not exist.
func (s *Store) AddFlashcardToDeck(ctx context.Context, deckID string, fc Flashcard) (Flashcard, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok, err := s.getDeck(ctx, deckID)
	if err != nil || !ok {
		return Flashcard{}, ok, err
	}

	card := NormalizeFlashcard(fc)
	card.ID = s.uniqueCardID(deck.Flashcards)
	deck.Flashcards = append(deck.Flashcards, card)

	if _, err := s.saveDeck(ctx, deck, false); err != nil {
		return Flashcard{}, false, err
	}
	return card, true, nil
}

// UpdateFlashcardInDeck replaces the card with the same id in place. It reports
// false when either the deck or the card does not exist.
func (s *Store) UpdateFlashcardInDeck(ctx context.Context, deckID string, fc Flashcard) (Flashcard, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateFlashcard(ctx, deckID, fc.ID, func(Flashcard) Flashcard { return fc })
}

// SetFlashcardStatus changes the mastery status of a single card.
func (s *Store) SetFlashcardStatus(ctx context.Context, deckID, cardID string, status Status) (Flashcard, bool, error) {
	if !status.Valid() {
		return Flashcard{}, false, fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateFlashcard(ctx, deckID, cardID, func(old Flashcard) Flashcard {
		old.Status = status
		return old
	})
}

// DeleteFlashcardFromDeck removes a card. Unknown decks or cards are ignored.
func (s *Store) DeleteFlashcardFromDeck(ctx context.Context, deckID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok, err := s.getDeck(ctx, deckID)
	if err != nil || !ok {
		return err
	}

	kept := make([]Flashcard, 0, len(deck.Flashcards))
	for _, fc := range deck.Flashcards {
		if fc.ID != cardID {
			kept = append(kept, fc)
		}
	}
	if len(kept) == len(deck.Flashcards) {
		return nil
	}
	deck.Flashcards = kept

	_, err = s.saveDeck(ctx, deck, false)
	return err
}

func (s *Store) updateFlashcard(ctx context.Context, deckID, cardID string, apply func(Flashcard) Flashcard) (Flashcard, bool, error) {
	deck, ok, err := s.getDeck(ctx, deckID)
	if err != nil || !ok {
		return Flashcard{}, ok, err
	}

	for i, old := range deck.Flashcards {
		if old.ID != cardID {
			continue
		}
		card := NormalizeFlashcard(apply(old))
		card.ID = cardID
		deck.Flashcards[i] = card

		if _, err := s.saveDeck(ctx, deck, false); err != nil {
			return Flashcard{}, false, err
		}
		return card, true, nil
	}
	return Flashcard{}, false, nil
}

// --- Notes ---

// AllNotes returns every note, normalized, in persisted order.
func (s *Store) AllNotes(ctx context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readNotes(ctx)
}

// GetNote retrieves a note by id.
func (s *Store) GetNote(ctx context.Context, id string) (Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getNote(ctx, id)
}

// SaveNote creates or updates a note with the same identity rules as SaveDeck.
func (s *Store) SaveNote(ctx context.Context, note Note) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveNote(ctx, note)
}

// SetNotePinned pins or unpins a note.
func (s *Store) SetNotePinned(ctx context.Context, id string, pinned bool) (Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok, err := s.getNote(ctx, id)
	if err != nil || !ok {
		return Note{}, ok, err
	}
	note.IsPinned = pinned
	saved, err := s.saveNote(ctx, note)
	if err != nil {
		return Note{}, false, err
	}
	return saved, true, nil
}

// DuplicateNote clones a note under a new id, naming it "<title> (Copy)".
func (s *Store) DuplicateNote(ctx context.Context, id string) (Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok, err := s.getNote(ctx, id)
	if err != nil || !ok {
		return Note{}, ok, err
	}
	clone := src
	clone.ID = ""
	clone.Title = src.Title + " (Copy)"
	clone.Tags = cloneTags(src.Tags)
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	saved, err := s.saveNote(ctx, clone)
	if err != nil {
		return Note{}, false, err
	}
	return saved, true, nil
}

// DeleteNote removes a note. Unknown ids are ignored.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.readNotes(ctx)
	if err != nil {
		return err
	}
	idx := indexOfNote(notes, id)
	if idx < 0 {
		return nil
	}
	notes = append(notes[:idx], notes[idx+1:]...)
	if err := s.write(ctx, NotesKey, notes); err != nil {
		return err
	}
	s.publish(EventDelete, CollectionNotes, id)
	return nil
}

// Watch observes changes made to the storage outside of this Store, if supported.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.storage.(Watchable)
	if !ok {
		return nil, errors.New("storage does not support watching")
	}
	return w.Watch(ctx)
}

// Close releases the storage when it holds resources such as a database pool.
func (s *Store) Close() error {
	if c, ok := s.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// --- internals (callers hold s.mu) ---

func (s *Store) getDeck(ctx context.Context, id string) (Deck, bool, error) {
	decks, err := s.readDecks(ctx)
	if err != nil {
		return Deck{}, false, err
	}
	if idx := indexOfDeck(decks, id); idx >= 0 {
		return decks[idx], true, nil
	}
	return Deck{}, false, nil
}

func (s *Store) saveDeck(ctx context.Context, deck Deck, keepCards bool) (Deck, error) {
	decks, err := s.readDecks(ctx)
	if err != nil {
		return Deck{}, err
	}

	now := s.now()
	saved := NormalizeDeck(deck)
	idx := indexOfDeck(decks, deck.ID)
	evt := EventModify

	if idx < 0 {
		saved.ID = s.newID()
		saved.CreatedAt = now
		saved.UpdatedAt = now
		evt = EventCreate
	} else {
		existing := decks[idx]
		saved.CreatedAt = existing.CreatedAt
		saved.UpdatedAt = latest(now, existing.CreatedAt, existing.UpdatedAt)
		if keepCards && len(saved.Flashcards) == 0 && len(existing.Flashcards) > 0 {
			saved.Flashcards = existing.Flashcards
		}
	}
	saved.Flashcards = s.assignCardIDs(saved.Flashcards)

	if idx < 0 {
		decks = append(decks, saved)
	} else {
		decks[idx] = saved
	}
	if err := s.write(ctx, DecksKey, decks); err != nil {
		return Deck{}, err
	}
	s.publish(evt, CollectionDecks, saved.ID)
	return saved, nil
}

func (s *Store) getNote(ctx context.Context, id string) (Note, bool, error) {
	notes, err := s.readNotes(ctx)
	if err != nil {
		return Note{}, false, err
	}
	if idx := indexOfNote(notes, id); idx >= 0 {
		return notes[idx], true, nil
	}
	return Note{}, false, nil
}

func (s *Store) saveNote(ctx context.Context, note Note) (Note, error) {
	notes, err := s.readNotes(ctx)
	if err != nil {
		return Note{}, err
	}

	now := s.now()
	saved := note
	idx := indexOfNote(notes, note.ID)
	evt := EventModify

	if idx < 0 {
		saved.ID = s.newID()
		saved.CreatedAt = now
		saved.UpdatedAt = now
		evt = EventCreate
	} else {
		existing := notes[idx]
		saved.CreatedAt = existing.CreatedAt
		saved.UpdatedAt = latest(now, existing.CreatedAt, existing.UpdatedAt)
	}
	saved = NormalizeNote(saved, now)

	if idx < 0 {
		notes = append(notes, saved)
	} else {
		notes[idx] = saved
	}
	if err := s.write(ctx, NotesKey, notes); err != nil {
		return Note{}, err
	}
	s.publish(evt, CollectionNotes, saved.ID)
	return saved, nil
}

func (s *Store) readDecks(ctx context.Context) ([]Deck, error) {
	decks, err := readCollection[Deck](ctx, s.storage, DecksKey)
	if err != nil {
		return nil, err
	}
	for i := range decks {
		decks[i] = NormalizeDeck(decks[i])
	}
	return decks, nil
}

func (s *Store) readNotes(ctx context.Context) ([]Note, error) {
	notes, err := readCollection[Note](ctx, s.storage, NotesKey)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range notes {
		notes[i] = NormalizeNote(notes[i], now)
	}
	return notes, nil
}

func readCollection[T any](ctx context.Context, storage Storage, key string) ([]T, error) {
	data, ok, err := storage.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCollection, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Store) write(ctx context.Context, key string, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.storage.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.logger.Debug("collection written", "key", key, "bytes", len(data))

	now := s.now()
	s.stateMu.Lock()
	s.lastWrite = &now
	s.stateMu.Unlock()
	return nil
}

func (s *Store) publish(t EventType, c Collection, id string) {
	s.broker.publish(Event{Type: t, Collection: c, ID: id, Timestamp: s.now().Unix()})
}

// assignCardIDs gives a fresh id to cards that have none or repeat an earlier id.
func (s *Store) assignCardIDs(cards []Flashcard) []Flashcard {
	seen := make(map[string]bool, len(cards))
	for i := range cards {
		if cards[i].ID == "" || seen[cards[i].ID] {
			cards[i].ID = s.uniqueCardIDIn(seen)
		}
		seen[cards[i].ID] = true
	}
	return cards
}

func (s *Store) uniqueCardID(cards []Flashcard) string {
	seen := make(map[string]bool, len(cards))
	for _, fc := range cards {
		seen[fc.ID] = true
	}
	return s.uniqueCardIDIn(seen)
}

func (s *Store) uniqueCardIDIn(seen map[string]bool) string {
	for {
		id := s.newCardID()
		if !seen[id] {
			return id
		}
	}
}

// detachDeck clears every identity of a deck so it can be inserted as a new entity.
func detachDeck(d Deck) Deck {
	d = NormalizeDeck(d)
	d.ID = ""
	d.CreatedAt = time.Time{}
	d.UpdatedAt = time.Time{}
	for i := range d.Flashcards {
		d.Flashcards[i].ID = ""
	}
	return d
}

func indexOfDeck(decks []Deck, id string) int {
	if id == "" {
		return -1
	}
	for i, d := range decks {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func indexOfNote(notes []Note, id string) int {
	if id == "" {
		return -1
	}
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func latest(t time.Time, others ...time.Time) time.Time {
	for _, o := range others {
		if o.After(t) {
			t = o
		}
	}
	return t
}
