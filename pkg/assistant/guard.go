package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/cardweaver/pkg/core"
)

// User-facing messages, one per operation.
const (
	MsgGenerate  = "Failed to generate flashcards using AI."
	MsgSummarize = "Failed to summarize content using AI."
	MsgExplain   = "Failed to explain content using AI."
	MsgImage     = "Failed to generate image using AI."
	MsgAnalyze   = "Failed to analyze note using AI."
	MsgNoCards   = "The AI could not generate flashcards from the provided input. Try refining your text or topic."
)

// DefaultTimeout bounds every guarded request.
const DefaultTimeout = 60 * time.Second

// Guard wraps a Generator so that every failure, including an empty result,
// comes back as a *core.CollaboratorError carrying a user-facing message.
// Guard itself satisfies Generator.
type Guard struct {
	Next    Generator
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewGuard wraps next with DefaultTimeout and a discarding logger.
func NewGuard(next Generator, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{Next: next, Timeout: DefaultTimeout, Logger: logger}
}

func (g *Guard) GenerateFromTopic(ctx context.Context, text string) ([]Card, error) {
	return guardCards(ctx, g, "generate", MsgGenerate, text, g.Next.GenerateFromTopic)
}

func (g *Guard) SummarizeIntoCards(ctx context.Context, content string) ([]Card, error) {
	return guardCards(ctx, g, "summarize", MsgSummarize, content, g.Next.SummarizeIntoCards)
}

func (g *Guard) ExplainSimply(ctx context.Context, content string) (string, error) {
	return guardText(ctx, g, "explain", MsgExplain, content, g.Next.ExplainSimply)
}

func (g *Guard) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return guardText(ctx, g, "image", MsgImage, prompt, g.Next.GenerateImage)
}

func (g *Guard) AnalyzeNote(ctx context.Context, content string) (NoteAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return NoteAnalysis{}, g.fail("analyze", MsgAnalyze, ErrEmptyInput)
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	res, err := g.Next.AnalyzeNote(ctx, content)
	if err != nil {
		return NoteAnalysis{}, g.fail("analyze", MsgAnalyze, err)
	}
	if strings.TrimSpace(res.Summary) == "" && len(res.Keywords) == 0 {
		return NoteAnalysis{}, g.fail("analyze", MsgAnalyze, ErrEmptyResult)
	}
	return res, nil
}

func guardCards(ctx context.Context, g *Guard, op, msg, input string, call func(context.Context, string) ([]Card, error)) ([]Card, error) {
	if strings.TrimSpace(input) == "" {
		return nil, g.fail(op, msg, ErrEmptyInput)
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	cards, err := call(ctx, input)
	if err != nil {
		return nil, g.fail(op, msg, err)
	}
	usable := make([]Card, 0, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Front) == "" && strings.TrimSpace(c.Back) == "" {
			continue
		}
		usable = append(usable, c)
	}
	if len(usable) == 0 {
		return nil, g.fail(op, MsgNoCards, ErrEmptyResult)
	}
	return usable, nil
}

func guardText(ctx context.Context, g *Guard, op, msg, input string, call func(context.Context, string) (string, error)) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", g.fail(op, msg, ErrEmptyInput)
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	out, err := call(ctx, input)
	if err != nil {
		return "", g.fail(op, msg, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", g.fail(op, msg, ErrEmptyResult)
	}
	return out, nil
}

func (g *Guard) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.Timeout)
}

func (g *Guard) fail(op, msg string, err error) error {
	if g.Logger != nil {
		g.Logger.Error("assistant request failed", "op", op, "error", err)
	}
	return &core.CollaboratorError{Op: op, Message: msg, Err: err}
}

var _ Generator = (*Guard)(nil)
