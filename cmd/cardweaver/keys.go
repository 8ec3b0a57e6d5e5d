package main

import (
	"bufio"
	"context"
	"io"
	"unicode"

	"github.com/aretw0/cardweaver/pkg/quiz"
)

// keyPress is one decoded keystroke. Keys the quiz engine knows carry a
// quiz.Key; letters used as commands are kept in char.
type keyPress struct {
	key  quiz.Key
	char rune
}

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
)

// readKeys decodes raw terminal input until r fails or ctx is done.
func readKeys(ctx context.Context, r io.Reader, out chan<- keyPress) error {
	br := bufio.NewReader(r)
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		select {
		case out <- decodeKey(ch, br):
		case <-ctx.Done():
			return nil
		}
	}
}

func decodeKey(ch rune, br *bufio.Reader) keyPress {
	switch ch {
	case ' ':
		return keyPress{key: quiz.KeySpace, char: ch}
	case '\r', '\n':
		return keyPress{key: quiz.KeyEnter, char: ch}
	case keyCtrlC:
		return keyPress{key: quiz.KeyOther, char: 'q'}
	case keyEsc:
		// Arrow keys arrive as ESC [ C / ESC [ D in a single read.
		if br.Buffered() >= 2 {
			next, _ := br.Peek(2)
			if lead, final := next[0], next[1]; lead == '[' {
				br.Discard(2)
				switch final {
				case 'C':
					return keyPress{key: quiz.KeyRight}
				case 'D':
					return keyPress{key: quiz.KeyLeft}
				}
			}
		}
		return keyPress{key: quiz.KeyOther, char: ch}
	}

	ch = unicode.ToLower(ch)
	switch ch {
	case 'y':
		return keyPress{key: quiz.KeyRight, char: ch}
	case 'n':
		return keyPress{key: quiz.KeyLeft, char: ch}
	}
	return keyPress{key: quiz.KeyOther, char: ch}
}
