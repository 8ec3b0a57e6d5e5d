// Package quiz runs study sessions over the flashcards of one deck.
//
// Engine is a pure, synchronous state machine:
//
//	Configuring → InProgress → AnswerRevealed → FeedbackGiven → (InProgress | Finished)
//	Finished → Configuring (Restart)
//
// Inputs that are not legal in the current phase are ignored and reported with
// a Signal. Session layers the asynchronous capabilities (speech, explanations)
// on top of an Engine.
package quiz

import (
	"math/rand/v2"

	"github.com/aretw0/introspection"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Engine is a quiz session state machine. It is not safe for concurrent use;
// a single owner loop drives it.
type Engine struct {
	cards  []core.Flashcard
	filter Filter
	rng    *rand.Rand

	phase       Phase
	round       int
	session     []core.Flashcard
	index       int
	score       int
	explanation string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used to shuffle sessions.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// NewEngine creates an engine over a snapshot of cards. The caller's slice is
// copied and never mutated.
func NewEngine(cards []core.Flashcard, opts ...Option) *Engine {
	snapshot := make([]core.Flashcard, len(cards))
	copy(snapshot, cards)

	e := &Engine{
		cards:  snapshot,
		filter: FilterAll,
		phase:  Configuring,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// SetFilter changes the filter. Only legal while Configuring.
func (e *Engine) SetFilter(f Filter) Signal {
	if e.phase != Configuring {
		return SignalIgnored
	}
	e.filter = f
	return SignalOK
}

// Filter returns the current filter.
func (e *Engine) Filter() Filter {
	return e.filter
}

// Matching counts the cards that pass the current filter.
func (e *Engine) Matching() int {
	n := 0
	for _, fc := range e.cards {
		if e.filter.Matches(fc) {
			n++
		}
	}
	return n
}

// Start shuffles the matching cards into a new session. With no matching card
// the engine stays in Configuring and reports SignalNoMatchingCards.
func (e *Engine) Start() Signal {
	if e.phase != Configuring {
		return SignalIgnored
	}

	candidates := make([]core.Flashcard, 0, len(e.cards))
	for _, fc := range e.cards {
		if e.filter.Matches(fc) {
			candidates = append(candidates, fc)
		}
	}
	if len(candidates) == 0 {
		return SignalNoMatchingCards
	}

	e.session = Shuffle(candidates, e.rng)
	e.round++
	e.index = 0
	e.score = 0
	e.explanation = ""
	e.phase = InProgress
	return SignalOK
}

// RevealAnswer shows the answer of the current card.
func (e *Engine) RevealAnswer() Signal {
	if e.phase != InProgress {
		return SignalIgnored
	}
	e.phase = AnswerRevealed
	return SignalOK
}

// MarkCorrect scores the current card and gives feedback.
func (e *Engine) MarkCorrect() Signal {
	return e.mark(true)
}

// MarkIncorrect gives feedback without scoring.
func (e *Engine) MarkIncorrect() Signal {
	return e.mark(false)
}

func (e *Engine) mark(correct bool) Signal {
	switch e.phase {
	case InProgress:
		return SignalRevealFirst
	case AnswerRevealed:
	default:
		return SignalIgnored
	}
	if correct {
		e.score++
	}
	e.phase = FeedbackGiven
	return SignalOK
}

// Advance moves to the next card, or finishes the session after the last one.
func (e *Engine) Advance() Signal {
	if e.phase != FeedbackGiven {
		return SignalIgnored
	}
	if e.index < len(e.session)-1 {
		e.index++
		e.explanation = ""
		e.phase = InProgress
		return SignalOK
	}
	e.explanation = ""
	e.phase = Finished
	return SignalFinished
}

// Restart discards the finished session and returns to Configuring.
func (e *Engine) Restart() Signal {
	if e.phase != Finished {
		return SignalIgnored
	}
	e.session = nil
	e.index = 0
	e.score = 0
	e.explanation = ""
	e.phase = Configuring
	return SignalOK
}

// ActionFor maps a key to the action it triggers in the current phase.
func (e *Engine) ActionFor(k Key) Action {
	switch k {
	case KeySpace:
		switch e.phase {
		case InProgress:
			return ActionReveal
		case FeedbackGiven:
			return ActionAdvance
		}
	case KeyEnter:
		if e.phase == FeedbackGiven {
			return ActionAdvance
		}
	case KeyLeft:
		if e.phase == AnswerRevealed {
			return ActionMarkIncorrect
		}
	case KeyRight:
		if e.phase == AnswerRevealed {
			return ActionMarkCorrect
		}
	}
	return ActionNone
}

// HandleKey applies a keyboard input. Keys typed into a text input are ignored.
func (e *Engine) HandleKey(k Key, inTextInput bool) Signal {
	if inTextInput {
		return SignalIgnored
	}
	switch e.ActionFor(k) {
	case ActionReveal:
		return e.RevealAnswer()
	case ActionAdvance:
		return e.Advance()
	case ActionMarkCorrect:
		return e.MarkCorrect()
	case ActionMarkIncorrect:
		return e.MarkIncorrect()
	default:
		return SignalIgnored
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Current returns the card on display.
func (e *Engine) Current() (core.Flashcard, bool) {
	if !e.phase.hasCard() {
		return core.Flashcard{}, false
	}
	return e.session[e.index], true
}

// Round counts the sessions started so far. A card shown in one round is not
// the same display as the same card shown after a restart.
func (e *Engine) Round() int {
	return e.round
}

// Index is the zero-based position of the current card in the session.
func (e *Engine) Index() int {
	return e.index
}

// Score is the number of cards marked correct so far.
func (e *Engine) Score() int {
	return e.score
}

// Total is the session length; zero while Configuring.
func (e *Engine) Total() int {
	return len(e.session)
}

// AnswerVisible reports whether the back of the current card is shown.
func (e *Engine) AnswerVisible() bool {
	return e.phase == AnswerRevealed || e.phase == FeedbackGiven
}

// Explanation is the simplified explanation attached to the current card.
func (e *Engine) Explanation() string {
	return e.explanation
}

// SetExplanation attaches text to the current card. It reports false, leaving
// the engine untouched, when cardID is no longer the card on display.
func (e *Engine) SetExplanation(cardID, text string) bool {
	cur, ok := e.Current()
	if !ok || cur.ID != cardID {
		return false
	}
	e.explanation = text
	return true
}

// ClearExplanation removes the explanation of the current card.
func (e *Engine) ClearExplanation() {
	e.explanation = ""
}

// Text returns the text of a side of the current card.
func (e *Engine) Text(side Side) (string, bool) {
	cur, ok := e.Current()
	if !ok {
		return "", false
	}
	switch side {
	case SideFront:
		return cur.Front, true
	case SideBack:
		return cur.Back, true
	default:
		if e.AnswerVisible() {
			return cur.Back, true
		}
		return cur.Front, true
	}
}

// Result returns the outcome once the session is Finished.
func (e *Engine) Result() (Result, bool) {
	if e.phase != Finished {
		return Result{}, false
	}
	tier, _ := TierFor(e.score, len(e.session))
	return Result{Score: e.score, Total: len(e.session), Tier: tier}, true
}

// EngineState exposes internal state for observability.
type EngineState struct {
	Phase         string `json:"phase"`
	Filter        Filter `json:"filter"`
	Cards         int    `json:"cards"`
	Index         int    `json:"index"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	AnswerVisible bool   `json:"answer_visible"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	return EngineState{
		Phase:         e.phase.String(),
		Filter:        e.filter,
		Cards:         len(e.cards),
		Index:         e.index,
		Score:         e.score,
		Total:         len(e.session),
		AnswerVisible: e.AnswerVisible(),
	}
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "quiz"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
