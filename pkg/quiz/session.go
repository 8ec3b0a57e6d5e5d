package quiz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cardweaver/pkg/assistant"
	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/device"
)

// MsgSpeech is the notification shown when speech fails.
const MsgSpeech = "Failed to speak text."

// speechStopTimeout bounds how long a new request waits for the previous
// utterance to stop.
const speechStopTimeout = 2 * time.Second

// Explainer produces a simplified explanation. assistant.Generator satisfies it.
type Explainer interface {
	ExplainSimply(ctx context.Context, content string) (string, error)
}

// EventKind tells what a background request produced.
type EventKind int

const (
	EventExplanation EventKind = iota
	EventExplanationFailed
	EventSpeechFailed
)

// Event is the completion of a background request. The owner loop hands it
// back to Session.Apply.
type Event struct {
	Kind   EventKind
	CardID string
	Round  int
	Text   string
	Err    error
}

// Session drives an Engine together with the speech and explanation
// capabilities. All methods except Events are meant to be called from the
// single loop that owns the Engine; background work reports back only through
// Events.
type Session struct {
	engine    *Engine
	speaker   device.Speaker
	explainer Explainer
	logger    *slog.Logger
	events    chan Event

	mu           sync.Mutex
	speechCancel context.CancelFunc
	speechDone   chan struct{}
	pending      display // explanation in flight

	closeOnce sync.Once
	closed    chan struct{}
}

// display identifies one card shown in one round of the engine.
type display struct {
	cardID string
	round  int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSpeaker sets the speech capability.
func WithSpeaker(s device.Speaker) SessionOption {
	return func(sess *Session) {
		sess.speaker = s
	}
}

// WithExplainer sets the explanation capability.
func WithExplainer(x Explainer) SessionOption {
	return func(sess *Session) {
		sess.explainer = x
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(sess *Session) {
		sess.logger = logger
	}
}

// NewSession wraps engine. Without options speech is a no-op and explanations
// are unavailable.
func NewSession(engine *Engine, opts ...SessionOption) *Session {
	s := &Session{
		engine:  engine,
		speaker: device.NopSpeaker{},
		logger:  slog.New(slog.DiscardHandler),
		events:  make(chan Event, 8),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the wrapped engine.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Events delivers the results of background requests.
func (s *Session) Events() <-chan Event {
	return s.events
}

// RevealAnswer flips the card, cancelling any speech in flight. Speech keeps
// going when the engine ignores the input.
func (s *Session) RevealAnswer() Signal {
	if s.engine.Phase() != InProgress {
		return SignalIgnored
	}
	s.cancelSpeech()
	return s.engine.RevealAnswer()
}

// Advance moves on, cancelling any speech in flight.
func (s *Session) Advance() Signal {
	if s.engine.Phase() != FeedbackGiven {
		return SignalIgnored
	}
	s.cancelSpeech()
	return s.engine.Advance()
}

// Restart returns to Configuring, cancelling any speech in flight.
func (s *Session) Restart() Signal {
	if s.engine.Phase() != Finished {
		return SignalIgnored
	}
	s.cancelSpeech()
	return s.engine.Restart()
}

// HandleKey applies a keyboard input with the same mapping as Engine.HandleKey,
// cancelling speech when the card flips or changes.
func (s *Session) HandleKey(k Key, inTextInput bool) Signal {
	if inTextInput {
		return SignalIgnored
	}
	switch s.engine.ActionFor(k) {
	case ActionReveal:
		return s.RevealAnswer()
	case ActionAdvance:
		return s.Advance()
	case ActionMarkCorrect:
		return s.engine.MarkCorrect()
	case ActionMarkIncorrect:
		return s.engine.MarkIncorrect()
	default:
		return SignalIgnored
	}
}

// RequestSpeech reads a side of the current card aloud. Any utterance in
// flight is cancelled, and has stopped, before the new one starts.
func (s *Session) RequestSpeech(ctx context.Context, side Side) Signal {
	text, ok := s.engine.Text(side)
	if !ok {
		return SignalIgnored
	}
	if strings.TrimSpace(text) == "" {
		return SignalNothingToSpeak
	}

	s.cancelSpeech()

	speechCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.speechCancel = cancel
	s.speechDone = done
	s.mu.Unlock()

	speaker := s.speaker
	lifecycle.Go(speechCtx, func(ctx context.Context) error {
		defer close(done)
		err := speaker.Speak(ctx, text)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		s.emit(Event{
			Kind: EventSpeechFailed,
			Err:  &core.CollaboratorError{Op: "speak", Message: MsgSpeech, Err: err},
		})
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("speech panic", "error", err)
	}))
	return SignalOK
}

// Speaking reports whether an utterance is in flight.
func (s *Session) Speaking() bool {
	s.mu.Lock()
	done := s.speechDone
	s.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// RequestExplanation asks for a simplified explanation of a side of the
// current card. The result arrives later on Events; any previous explanation
// is cleared right away.
func (s *Session) RequestExplanation(ctx context.Context, side Side) Signal {
	cur, ok := s.engine.Current()
	if !ok {
		return SignalIgnored
	}
	if s.explainer == nil {
		return SignalUnavailable
	}
	text, _ := s.engine.Text(side)
	if strings.TrimSpace(text) == "" {
		return SignalNothingToExplain
	}

	s.engine.ClearExplanation()
	shown := display{cardID: cur.ID, round: s.engine.Round()}
	s.mu.Lock()
	s.pending = shown
	s.mu.Unlock()

	explainer := s.explainer
	lifecycle.Go(ctx, func(ctx context.Context) error {
		out, err := explainer.ExplainSimply(ctx, text)
		if err != nil {
			if !errors.Is(err, core.ErrCollaborator) {
				err = &core.CollaboratorError{Op: "explain", Message: assistant.MsgExplain, Err: err}
			}
			s.emit(Event{Kind: EventExplanationFailed, CardID: shown.cardID, Round: shown.round, Err: err})
			return nil
		}
		s.emit(Event{Kind: EventExplanation, CardID: shown.cardID, Round: shown.round, Text: out})
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("explanation panic", "error", err)
	}))
	return SignalOK
}

// Explaining reports whether an explanation for the current card is in flight.
func (s *Session) Explaining() bool {
	cur, ok := s.engine.Current()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending == display{cardID: cur.ID, round: s.engine.Round()}
}

// Apply folds a background result into the engine. It reports whether the
// event is still relevant; stale explanations (the session has moved to
// another card, or restarted since the request) are discarded. The returned error is the failure to notify the
// user about, if any.
func (s *Session) Apply(e Event) (bool, error) {
	switch e.Kind {
	case EventExplanation, EventExplanationFailed:
		origin := display{cardID: e.CardID, round: e.Round}
		s.mu.Lock()
		if s.pending == origin {
			s.pending = display{}
		}
		s.mu.Unlock()

		cur, ok := s.engine.Current()
		if !ok || cur.ID != e.CardID || s.engine.Round() != e.Round {
			s.logger.Debug("discarding stale explanation", "card", e.CardID, "round", e.Round)
			return false, nil
		}
		if e.Kind == EventExplanationFailed {
			return true, e.Err
		}
		return s.engine.SetExplanation(e.CardID, e.Text), nil
	case EventSpeechFailed:
		return true, e.Err
	default:
		return false, nil
	}
}

// Close cancels speech in flight and stops delivering events. Explanations
// still running finish in the background and are dropped.
func (s *Session) Close() {
	s.cancelSpeech()
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) cancelSpeech() {
	s.mu.Lock()
	cancel, done := s.speechCancel, s.speechDone
	s.speechCancel, s.speechDone = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(speechStopTimeout):
		s.logger.Warn("speech did not stop in time")
	}
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	case <-s.closed:
	}
}
