// Package assistant defines the text-generation collaborator consumed by
// cardweaver and the guard that turns its failures into user-facing errors.
package assistant

import (
	"context"
	"errors"
)

// Card is a flashcard proposed by a Generator, before it belongs to a deck.
type Card struct {
	Title string `json:"title" yaml:"title"`
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back" yaml:"back"`
}

// NoteAnalysis is the summary and keyword list extracted from a note.
type NoteAnalysis struct {
	Summary  string   `json:"summary" yaml:"summary"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Generator is a request/response text-generation service.
type Generator interface {
	// GenerateFromTopic builds flashcards from a topic or a block of text.
	GenerateFromTopic(ctx context.Context, text string) ([]Card, error)
	// SummarizeIntoCards condenses content into flashcards.
	SummarizeIntoCards(ctx context.Context, content string) ([]Card, error)
	// ExplainSimply rewrites content in plain words.
	ExplainSimply(ctx context.Context, content string) (string, error)
	// GenerateImage returns an image reference (usually a data URI) for prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
	// AnalyzeNote summarizes a note and extracts keywords.
	AnalyzeNote(ctx context.Context, content string) (NoteAnalysis, error)
}

// ErrUnavailable is returned by Unavailable for every request.
var ErrUnavailable = errors.New("text generation is not configured")

// ErrEmptyResult reports a response without usable content.
var ErrEmptyResult = errors.New("empty result")

// ErrEmptyInput reports a request without content to work on.
var ErrEmptyInput = errors.New("empty input")

// Unavailable is the Generator used when no service is configured.
type Unavailable struct{}

func (Unavailable) GenerateFromTopic(context.Context, string) ([]Card, error) {
	return nil, ErrUnavailable
}

func (Unavailable) SummarizeIntoCards(context.Context, string) ([]Card, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ExplainSimply(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) GenerateImage(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) AnalyzeNote(context.Context, string) (NoteAnalysis, error) {
	return NoteAnalysis{}, ErrUnavailable
}

// Static answers every request with canned responses. Useful for demos and
// tests; a nil Err field means success.
type Static struct {
	Cards       []Card
	Explanation string
	Image       string
	Analysis    NoteAnalysis
	Err         error
}

func (s Static) GenerateFromTopic(context.Context, string) ([]Card, error) {
	return s.Cards, s.Err
}

func (s Static) SummarizeIntoCards(context.Context, string) ([]Card, error) {
	return s.Cards, s.Err
}

func (s Static) ExplainSimply(context.Context, string) (string, error) {
	return s.Explanation, s.Err
}

func (s Static) GenerateImage(context.Context, string) (string, error) {
	return s.Image, s.Err
}

func (s Static) AnalyzeNote(context.Context, string) (NoteAnalysis, error) {
	return s.Analysis, s.Err
}

var (
	_ Generator = Unavailable{}
	_ Generator = Static{}
)
