package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardweaver/pkg/assistant"
	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/quiz"
)

// blockingSpeaker speaks until its context is cancelled and records the order
// in which utterances start and stop.
type blockingSpeaker struct {
	mu  sync.Mutex
	log []string
}

func (s *blockingSpeaker) Speak(ctx context.Context, text string) error {
	s.record("start " + text)
	<-ctx.Done()
	// Stopping takes a moment, like a real speech process.
	time.Sleep(20 * time.Millisecond)
	s.record("stop " + text)
	return ctx.Err()
}

func (s *blockingSpeaker) record(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
}

func (s *blockingSpeaker) entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

type failingSpeaker struct{}

func (failingSpeaker) Speak(context.Context, string) error { return errors.New("no audio device") }

// gatedExplainer answers only when released.
type gatedExplainer struct {
	release chan struct{}
	err     error
}

func (g *gatedExplainer) ExplainSimply(ctx context.Context, content string) (string, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if g.err != nil {
		return "", g.err
	}
	return "simply: " + content, nil
}

func startedSession(t *testing.T, opts ...quiz.SessionOption) *quiz.Session {
	t.Helper()
	e := newEngine(cards(core.StatusLearning, core.StatusLearning))
	require.Equal(t, quiz.SignalOK, e.Start())
	s := quiz.NewSession(e, opts...)
	t.Cleanup(s.Close)
	return s
}

func waitEvent(t *testing.T, s *quiz.Session) quiz.Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for session event")
		return quiz.Event{}
	}
}

func TestSession_SpeechCancelsBeforeReissue(t *testing.T) {
	speaker := &blockingSpeaker{}
	s := startedSession(t, quiz.WithSpeaker(speaker))
	ctx := context.Background()

	require.Equal(t, quiz.SignalOK, s.RequestSpeech(ctx, quiz.SideFront))
	require.Eventually(t, func() bool { return len(speaker.entries()) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Speaking())

	require.Equal(t, quiz.SignalOK, s.RequestSpeech(ctx, quiz.SideBack))
	require.Eventually(t, func() bool { return len(speaker.entries()) == 3 }, time.Second, 5*time.Millisecond)

	cur, _ := s.Engine().Current()
	assert.Equal(t, []string{
		"start " + cur.Front,
		"stop " + cur.Front,
		"start " + cur.Back,
	}, speaker.entries())

	// Flipping the card stops the utterance.
	require.Equal(t, quiz.SignalOK, s.RevealAnswer())
	assert.False(t, s.Speaking())
	assert.Equal(t, "stop "+cur.Back, speaker.entries()[3])
}

func TestSession_SpeechGuards(t *testing.T) {
	e := newEngine([]core.Flashcard{{ID: "c1", Front: "   ", Back: "answer"}})
	s := quiz.NewSession(e)
	defer s.Close()

	assert.Equal(t, quiz.SignalIgnored, s.RequestSpeech(context.Background(), quiz.SideShown))
	require.Equal(t, quiz.SignalOK, e.Start())
	assert.Equal(t, quiz.SignalNothingToSpeak, s.RequestSpeech(context.Background(), quiz.SideShown))
	assert.Equal(t, quiz.SignalOK, s.RequestSpeech(context.Background(), quiz.SideBack))
}

func TestSession_SpeechFailure(t *testing.T) {
	s := startedSession(t, quiz.WithSpeaker(failingSpeaker{}))
	require.Equal(t, quiz.SignalOK, s.RequestSpeech(context.Background(), quiz.SideFront))

	ev := waitEvent(t, s)
	assert.Equal(t, quiz.EventSpeechFailed, ev.Kind)
	relevant, err := s.Apply(ev)
	assert.True(t, relevant)
	assert.ErrorIs(t, err, core.ErrCollaborator)
	assert.Contains(t, err.Error(), quiz.MsgSpeech)
}

func TestSession_Explanation(t *testing.T) {
	explainer := &gatedExplainer{release: make(chan struct{})}
	s := startedSession(t, quiz.WithExplainer(explainer))
	cur, _ := s.Engine().Current()

	require.Equal(t, quiz.SignalOK, s.RequestExplanation(context.Background(), quiz.SideShown))
	assert.True(t, s.Explaining())
	close(explainer.release)

	ev := waitEvent(t, s)
	assert.Equal(t, cur.ID, ev.CardID)
	relevant, err := s.Apply(ev)
	require.NoError(t, err)
	assert.True(t, relevant)
	assert.Equal(t, "simply: "+cur.Front, s.Engine().Explanation())
	assert.False(t, s.Explaining())
}

func TestSession_StaleExplanationDiscarded(t *testing.T) {
	explainer := &gatedExplainer{release: make(chan struct{})}
	s := startedSession(t, quiz.WithExplainer(explainer))
	first, _ := s.Engine().Current()

	require.Equal(t, quiz.SignalOK, s.RequestExplanation(context.Background(), quiz.SideFront))

	// Move on before the answer arrives.
	require.Equal(t, quiz.SignalOK, s.RevealAnswer())
	require.Equal(t, quiz.SignalOK, s.Engine().MarkCorrect())
	require.Equal(t, quiz.SignalOK, s.Advance())
	close(explainer.release)

	ev := waitEvent(t, s)
	assert.Equal(t, first.ID, ev.CardID)
	relevant, err := s.Apply(ev)
	require.NoError(t, err)
	assert.False(t, relevant)
	assert.Empty(t, s.Engine().Explanation())
}

func TestSession_ExplanationFromPreviousRoundDiscarded(t *testing.T) {
	explainer := &gatedExplainer{release: make(chan struct{})}
	e := newEngine(cards(core.StatusLearning))
	require.Equal(t, quiz.SignalOK, e.Start())
	s := quiz.NewSession(e, quiz.WithExplainer(explainer))
	defer s.Close()

	require.Equal(t, quiz.SignalOK, s.RequestExplanation(context.Background(), quiz.SideFront))

	// Finish and start over: the same card is current again.
	require.Equal(t, quiz.SignalOK, s.RevealAnswer())
	require.Equal(t, quiz.SignalOK, e.MarkCorrect())
	require.Equal(t, quiz.SignalFinished, s.Advance())
	require.Equal(t, quiz.SignalOK, s.Restart())
	require.Equal(t, quiz.SignalOK, e.Start())
	assert.False(t, s.Explaining())
	close(explainer.release)

	ev := waitEvent(t, s)
	cur, _ := e.Current()
	require.Equal(t, cur.ID, ev.CardID)
	relevant, err := s.Apply(ev)
	require.NoError(t, err)
	assert.False(t, relevant)
	assert.Empty(t, e.Explanation())
	assert.Equal(t, quiz.InProgress, e.Phase())
}

func TestSession_ExplanationFailure(t *testing.T) {
	explainer := &gatedExplainer{release: make(chan struct{}), err: errors.New("quota exceeded")}
	close(explainer.release)
	s := startedSession(t, quiz.WithExplainer(explainer))

	require.Equal(t, quiz.SignalOK, s.RequestExplanation(context.Background(), quiz.SideBack))
	relevant, err := s.Apply(waitEvent(t, s))
	assert.True(t, relevant)
	assert.ErrorIs(t, err, core.ErrCollaborator)
	assert.Contains(t, err.Error(), assistant.MsgExplain)
	assert.Empty(t, s.Engine().Explanation())
}

func TestSession_ExplanationGuards(t *testing.T) {
	e := newEngine([]core.Flashcard{{ID: "c1", Front: "", Back: "answer"}})
	plain := quiz.NewSession(e)
	defer plain.Close()

	assert.Equal(t, quiz.SignalIgnored, plain.RequestExplanation(context.Background(), quiz.SideFront))
	require.Equal(t, quiz.SignalOK, e.Start())
	assert.Equal(t, quiz.SignalUnavailable, plain.RequestExplanation(context.Background(), quiz.SideFront))

	withExplainer := quiz.NewSession(e, quiz.WithExplainer(&gatedExplainer{release: make(chan struct{})}))
	defer withExplainer.Close()
	assert.Equal(t, quiz.SignalNothingToExplain, withExplainer.RequestExplanation(context.Background(), quiz.SideFront))
}

func TestSession_HandleKeyCancelsSpeech(t *testing.T) {
	speaker := &blockingSpeaker{}
	s := startedSession(t, quiz.WithSpeaker(speaker))

	require.Equal(t, quiz.SignalOK, s.RequestSpeech(context.Background(), quiz.SideShown))
	require.Eventually(t, s.Speaking, time.Second, 5*time.Millisecond)

	assert.Equal(t, quiz.SignalIgnored, s.HandleKey(quiz.KeySpace, true))
	assert.True(t, s.Speaking())

	require.Equal(t, quiz.SignalOK, s.HandleKey(quiz.KeySpace, false))
	assert.False(t, s.Speaking())
	assert.Equal(t, quiz.AnswerRevealed, s.Engine().Phase())
}

func TestSession_IgnoredTransitionKeepsSpeech(t *testing.T) {
	speaker := &blockingSpeaker{}
	s := startedSession(t, quiz.WithSpeaker(speaker))

	require.Equal(t, quiz.SignalOK, s.RequestSpeech(context.Background(), quiz.SideFront))
	require.Eventually(t, s.Speaking, time.Second, 5*time.Millisecond)

	assert.Equal(t, quiz.SignalIgnored, s.Advance())
	assert.Equal(t, quiz.SignalIgnored, s.Restart())
	assert.True(t, s.Speaking())
	assert.Len(t, speaker.entries(), 1)

	require.Equal(t, quiz.SignalOK, s.RevealAnswer())
	assert.Equal(t, quiz.SignalIgnored, s.RevealAnswer())
	assert.False(t, s.Speaking())
}

func TestSession_CloseStopsSpeech(t *testing.T) {
	speaker := &blockingSpeaker{}
	s := startedSession(t, quiz.WithSpeaker(speaker))
	require.Equal(t, quiz.SignalOK, s.RequestSpeech(context.Background(), quiz.SideFront))
	require.Eventually(t, s.Speaking, time.Second, 5*time.Millisecond)

	s.Close()
	s.Close()
	assert.False(t, s.Speaking())
}
