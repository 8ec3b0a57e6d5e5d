package quiz

import (
	"fmt"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Phase is the state of a quiz Engine.
type Phase int

const (
	Configuring Phase = iota
	InProgress
	AnswerRevealed
	FeedbackGiven
	Finished
)

func (p Phase) String() string {
	switch p {
	case Configuring:
		return "configuring"
	case InProgress:
		return "in_progress"
	case AnswerRevealed:
		return "answer_revealed"
	case FeedbackGiven:
		return "feedback_given"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// hasCard reports whether a card is on display in p.
func (p Phase) hasCard() bool {
	return p == InProgress || p == AnswerRevealed || p == FeedbackGiven
}

// Filter selects which cards of the deck take part in a session.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterLearning Filter = "learning"
	FilterMastered Filter = "mastered"
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterLearning, FilterMastered:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, learning or mastered)", s)
	}
}

// Matches reports whether fc passes the filter. A card without status counts
// as learning.
func (f Filter) Matches(fc core.Flashcard) bool {
	switch f {
	case FilterLearning:
		return fc.Status == core.StatusLearning || fc.Status == ""
	case FilterMastered:
		return fc.Status == core.StatusMastered
	default:
		return true
	}
}

// Signal is the advisory outcome of a quiz input. Signals are never errors.
type Signal int

const (
	SignalOK Signal = iota
	// SignalIgnored: the input is not legal in the current phase.
	SignalIgnored
	// SignalNoMatchingCards: Start found no card matching the filter.
	SignalNoMatchingCards
	// SignalRevealFirst: marking was attempted before the answer was revealed.
	SignalRevealFirst
	// SignalFinished: Advance ended the session.
	SignalFinished
	// SignalNothingToSpeak: the requested side has no text.
	SignalNothingToSpeak
	// SignalNothingToExplain: the requested side has no text.
	SignalNothingToExplain
	// SignalUnavailable: the capability needed by the request is not configured.
	SignalUnavailable
)

func (s Signal) String() string {
	switch s {
	case SignalOK:
		return "ok"
	case SignalIgnored:
		return "ignored"
	case SignalNoMatchingCards:
		return "No matching cards"
	case SignalRevealFirst:
		return "Reveal Answer First"
	case SignalFinished:
		return "Quiz Complete!"
	case SignalNothingToSpeak:
		return "Nothing to speak"
	case SignalNothingToExplain:
		return "Nothing to explain"
	case SignalUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Side names a face of the current card.
type Side int

const (
	// SideShown is the back once the answer is visible, the front otherwise.
	SideShown Side = iota
	SideFront
	SideBack
)

// Key is a keyboard input relevant to the quiz.
type Key int

const (
	KeyOther Key = iota
	KeySpace
	KeyEnter
	KeyLeft
	KeyRight
)

// Action is what a key does in the current phase.
type Action int

const (
	ActionNone Action = iota
	ActionReveal
	ActionAdvance
	ActionMarkCorrect
	ActionMarkIncorrect
)

// Tier is the qualitative grade of a finished session.
type Tier string

const (
	TierExcellent  Tier = "excellent"
	TierGood       Tier = "good"
	TierKeepTrying Tier = "keep trying"
)

// Message is the text shown with the tier.
func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excellent work!"
	case TierGood:
		return "Good job, keep practicing!"
	default:
		return "Keep trying, you'll get there!"
	}
}

// TierFor grades score out of total. It reports false when total is zero.
func TierFor(score, total int) (Tier, bool) {
	if total <= 0 {
		return "", false
	}
	ratio := float64(score) / float64(total)
	switch {
	case ratio >= 0.8:
		return TierExcellent, true
	case ratio >= 0.5:
		return TierGood, true
	default:
		return TierKeepTrying, true
	}
}

// Result is the outcome of a finished session.
type Result struct {
	Score int
	Total int
	Tier  Tier
}
