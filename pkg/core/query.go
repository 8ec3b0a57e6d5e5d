package core

import (
	"slices"
	"sort"
	"strings"
)

// NoteSort selects the order of a note listing.
type NoteSort string

const (
	SortCreatedDesc NoteSort = "createdAt_desc"
	SortCreatedAsc  NoteSort = "createdAt_asc"
	SortUpdatedDesc NoteSort = "updatedAt_desc"
	SortUpdatedAsc  NoteSort = "updatedAt_asc"
	SortTitleAsc    NoteSort = "title_asc"
	SortTitleDesc   NoteSort = "title_desc"
)

// FilterDecks keeps the decks whose name or description contains query
// (case-insensitive) and that carry every tag in tags.
func FilterDecks(decks []Deck, query string, tags []string) []Deck {
	q := strings.ToLower(query)
	out := make([]Deck, 0, len(decks))
	for _, d := range decks {
		if !containsFold(q, d.Name, d.Description) || !hasAllTags(d.Tags, tags) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FilterNotes keeps the notes whose title or content contains query
// (case-insensitive) and that carry every tag in tags.
func FilterNotes(notes []Note, query string, tags []string) []Note {
	q := strings.ToLower(query)
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if !containsFold(q, n.Title, n.Content) || !hasAllTags(n.Tags, tags) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// AllTags returns the sorted set of tags used by the given tag lists.
func AllTags(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, tags := range lists {
		for _, t := range tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DeckTags collects the tag lists of decks, for use with AllTags.
func DeckTags(decks []Deck) [][]string {
	out := make([][]string, len(decks))
	for i, d := range decks {
		out[i] = d.Tags
	}
	return out
}

// NoteTags collects the tag lists of notes, for use with AllTags.
func NoteTags(notes []Note) [][]string {
	out := make([][]string, len(notes))
	for i, n := range notes {
		out[i] = n.Tags
	}
	return out
}

// SortDecksNewestFirst orders decks by creation time, most recent first.
func SortDecksNewestFirst(decks []Deck) {
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].CreatedAt.After(decks[j].CreatedAt)
	})
}

// SortNotes orders notes with pinned notes first; each group is sorted by order.
// Unknown orders fall back to SortCreatedDesc.
func SortNotes(notes []Note, order NoteSort) {
	less := noteLess(order)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return less(notes[i], notes[j])
	})
}

func noteLess(order NoteSort) func(a, b Note) bool {
	switch order {
	case SortTitleAsc:
		return func(a, b Note) bool { return a.Title < b.Title }
	case SortTitleDesc:
		return func(a, b Note) bool { return a.Title > b.Title }
	case SortUpdatedDesc:
		return func(a, b Note) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	case SortUpdatedAsc:
		return func(a, b Note) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortCreatedAsc:
		return func(a, b Note) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b Note) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

// DeckProgress counts the mastered cards of a deck.
func DeckProgress(d Deck) (mastered, total int) {
	for _, fc := range d.Flashcards {
		if NormalizeFlashcard(fc).Status == StatusMastered {
			mastered++
		}
	}
	return mastered, len(d.Flashcards)
}

func containsFold(lowerQuery string, fields ...string) bool {
	if lowerQuery == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func hasAllTags(have, want []string) bool {
	for _, t := range want {
		if !slices.Contains(have, t) {
			return false
		}
	}
	return true
}
