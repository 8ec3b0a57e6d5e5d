package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/cardweaver/pkg/device"
)

// Command delegates generation to an external program. The program is invoked
// with the operation name as its last argument ("generate", "summarize",
// "explain", "image" or "analyze") and the input text on stdin, and must print
// JSON on stdout:
//
//	generate, summarize: [{"title","front","back"}] or {"flashcards": [...]}
//	explain:             {"simplifiedExplanation": "..."} or plain text
//	image:               {"imageDataUri": "..."} or plain text
//	analyze:             {"summary": "...", "keywords": [...]}
type Command struct {
	Command device.Command
}

func (c Command) GenerateFromTopic(ctx context.Context, text string) ([]Card, error) {
	return c.cards(ctx, "generate", text)
}

func (c Command) SummarizeIntoCards(ctx context.Context, content string) ([]Card, error) {
	return c.cards(ctx, "summarize", content)
}

func (c Command) ExplainSimply(ctx context.Context, content string) (string, error) {
	return c.text(ctx, "explain", "simplifiedExplanation", content)
}

func (c Command) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return c.text(ctx, "image", "imageDataUri", prompt)
}

func (c Command) AnalyzeNote(ctx context.Context, content string) (NoteAnalysis, error) {
	out, err := c.Command.Output(ctx, content, "analyze")
	if err != nil {
		return NoteAnalysis{}, err
	}
	var res NoteAnalysis
	if err := json.Unmarshal(out, &res); err != nil {
		return NoteAnalysis{}, fmt.Errorf("invalid analyze response: %w", err)
	}
	return res, nil
}

func (c Command) cards(ctx context.Context, op, input string) ([]Card, error) {
	out, err := c.Command.Output(ctx, input, op)
	if err != nil {
		return nil, err
	}
	out = bytes.TrimSpace(out)

	var cards []Card
	if len(out) > 0 && out[0] == '{' {
		var wrapped struct {
			Flashcards []Card `json:"flashcards"`
		}
		if err := json.Unmarshal(out, &wrapped); err != nil {
			return nil, fmt.Errorf("invalid %s response: %w", op, err)
		}
		return wrapped.Flashcards, nil
	}
	if err := json.Unmarshal(out, &cards); err != nil {
		return nil, fmt.Errorf("invalid %s response: %w", op, err)
	}
	return cards, nil
}

func (c Command) text(ctx context.Context, op, field, input string) (string, error) {
	out, err := c.Command.Output(ctx, input, op)
	if err != nil {
		return "", err
	}
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			if s, ok := obj[field].(string); ok {
				return s, nil
			}
			return "", fmt.Errorf("invalid %s response: missing %q", op, field)
		}
	}
	return strings.TrimSpace(string(out)), nil
}

var _ Generator = Command{}
