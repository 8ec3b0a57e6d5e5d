package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/device"
	"github.com/aretw0/cardweaver/pkg/quiz"
)

// copyTimeout bounds a clipboard copy from the quiz.
const copyTimeout = 5 * time.Second

func newQuizCmd(a *app) *cobra.Command {
	var (
		filter string
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "quiz [deck-id]",
		Short: "Study a deck interactively",
		Long: `Quiz runs a shuffled study session in the terminal.

  space    reveal the answer / next card
  → or y   I got it right
  ← or n   I got it wrong
  enter    next card
  s        read the shown side aloud
  e        explain the shown side in simple words
  c        copy the shown side to the clipboard
  q        quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := quiz.ParseFilter(filter)
			if err != nil {
				return err
			}
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return errors.New("quiz needs an interactive terminal")
			}

			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				if len(deck.Flashcards) == 0 {
					return fmt.Errorf("deck %q has no flashcards", deck.Name)
				}

				engineOpts := []quiz.Option{quiz.WithFilter(f)}
				if cmd.Flags().Changed("seed") {
					engineOpts = append(engineOpts, quiz.WithRand(rand.New(rand.NewPCG(seed, seed))))
				}

				caps := a.capabilities()
				sessionOpts := []quiz.SessionOption{
					quiz.WithSpeaker(caps.Speaker),
					quiz.WithLogger(a.logger),
				}
				if caps.HasAssistant {
					sessionOpts = append(sessionOpts, quiz.WithExplainer(caps.Assistant))
				}
				session := quiz.NewSession(quiz.NewEngine(deck.Flashcards, engineOpts...), sessionOpts...)
				defer session.Close()

				oldState, err := term.MakeRaw(fd)
				if err != nil {
					return fmt.Errorf("failed to enter raw mode: %w", err)
				}
				defer term.Restore(fd, oldState)

				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				keys := make(chan keyPress)
				lifecycle.Go(ctx, func(ctx context.Context) error {
					defer close(keys)
					return readKeys(ctx, os.Stdin, keys)
				})

				ui := newQuizUI(deck, session, caps.Clipboard, cmd.OutOrStdout())
				return ui.run(ctx, keys)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Cards to study: all, learning or mastered (asked when empty)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Shuffle seed for a reproducible order")
	return cmd
}

// quizUI renders a Session on a raw terminal and routes keys to it.
type quizUI struct {
	deck      core.Deck
	session   *quiz.Session
	clipboard device.Clipboard
	out       io.Writer
	notice    string
}

func newQuizUI(deck core.Deck, session *quiz.Session, clipboard device.Clipboard, out io.Writer) *quizUI {
	if clipboard == nil {
		clipboard = device.NopClipboard{}
	}
	return &quizUI{deck: deck, session: session, clipboard: clipboard, out: out}
}

// run is the single loop owning the engine: keys and background results are
// both handled here.
func (u *quizUI) run(ctx context.Context, keys <-chan keyPress) error {
	u.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case kp, ok := <-keys:
			if !ok {
				return nil
			}
			if quit := u.handle(ctx, kp); quit {
				fmt.Fprint(u.out, "\r\n")
				return nil
			}
		case ev := <-u.session.Events():
			relevant, err := u.session.Apply(ev)
			if err != nil {
				u.notice = err.Error()
			} else if !relevant {
				continue
			}
		}
		u.render()
	}
}

func (u *quizUI) handle(ctx context.Context, kp keyPress) (quit bool) {
	u.notice = ""
	engine := u.session.Engine()
	if kp.char == 'q' {
		return true
	}

	switch engine.Phase() {
	case quiz.Configuring:
		switch {
		case kp.char == 'a':
			u.signal(engine.SetFilter(quiz.FilterAll))
		case kp.char == 'l':
			u.signal(engine.SetFilter(quiz.FilterLearning))
		case kp.char == 'm':
			u.signal(engine.SetFilter(quiz.FilterMastered))
		case kp.key == quiz.KeySpace || kp.key == quiz.KeyEnter:
			u.signal(engine.Start())
		}
		return false
	case quiz.Finished:
		if kp.char == 'r' || kp.key == quiz.KeyEnter {
			u.signal(u.session.Restart())
		}
		return false
	}

	switch kp.char {
	case 's':
		u.signal(u.session.RequestSpeech(ctx, quiz.SideShown))
	case 'e':
		u.signal(u.session.RequestExplanation(ctx, quiz.SideShown))
	case 'c':
		u.copyShown(ctx)
	case 'y':
		u.signal(engine.MarkCorrect())
	case 'n':
		u.signal(engine.MarkIncorrect())
	default:
		u.signal(u.session.HandleKey(kp.key, false))
	}
	return false
}

func (u *quizUI) copyShown(ctx context.Context) {
	text, ok := u.session.Engine().Text(quiz.SideShown)
	if !ok || strings.TrimSpace(text) == "" {
		u.notice = "Nothing to copy."
		return
	}
	ctx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()
	if err := u.clipboard.Copy(ctx, text); err != nil {
		u.notice = "Could not copy to clipboard."
		return
	}
	u.notice = "Copied to clipboard."
}

func (u *quizUI) signal(s quiz.Signal) {
	switch s {
	case quiz.SignalRevealFirst:
		u.notice = "Reveal the answer before marking it."
	case quiz.SignalNoMatchingCards:
		u.notice = fmt.Sprintf("No %s flashcards in this deck. Pick another filter.", u.session.Engine().Filter())
	case quiz.SignalNothingToSpeak:
		u.notice = "Nothing to read aloud."
	case quiz.SignalNothingToExplain:
		u.notice = "Nothing to explain."
	case quiz.SignalUnavailable:
		u.notice = "No assistant configured."
	}
}

func (u *quizUI) render() {
	engine := u.session.Engine()
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("Quiz: %s", u.deck.Name)
	add("")

	switch engine.Phase() {
	case quiz.Configuring:
		add("Choose the cards to study:")
		for _, f := range []quiz.Filter{quiz.FilterAll, quiz.FilterLearning, quiz.FilterMastered} {
			marker := " "
			if engine.Filter() == f {
				marker = ">"
			}
			add("%s [%c] %-9s %d card(s)", marker, f[0], f, u.count(f))
		}
		add("")
		add("space/enter start   q quit")
	case quiz.Finished:
		res, _ := engine.Result()
		add("Finished! Score: %d/%d", res.Score, res.Total)
		add("%s", res.Tier.Message())
		add("")
		add("r restart   q quit")
	default:
		card, _ := engine.Current()
		add("Card %d/%d   Score %d", engine.Index()+1, engine.Total(), engine.Score())
		if card.Title != "" {
			add("%s", card.Title)
		}
		add("")
		add("Q: %s", card.Front)
		if engine.AnswerVisible() {
			add("A: %s", card.Back)
		}
		if u.session.Explaining() {
			add("")
			add("Explaining...")
		} else if exp := engine.Explanation(); exp != "" {
			add("")
			add("In simple words: %s", exp)
		}
		add("")
		switch engine.Phase() {
		case quiz.InProgress:
			add("space reveal   s speak   e explain   c copy   q quit")
		case quiz.AnswerRevealed:
			add("→/y correct   ←/n incorrect   s speak   e explain   c copy")
		case quiz.FeedbackGiven:
			add("space/enter next   s speak   e explain   c copy")
		}
	}
	if u.notice != "" {
		add("")
		add("! %s", u.notice)
	}

	// Raw mode: no implicit carriage returns.
	fmt.Fprint(u.out, "\x1b[2J\x1b[H"+strings.Join(lines, "\r\n")+"\r\n")
}

func (u *quizUI) count(f quiz.Filter) int {
	n := 0
	for _, fc := range u.deck.Flashcards {
		if f.Matches(fc) {
			n++
		}
	}
	return n
}
