// Package device abstracts the host capabilities used while studying: speech
// output and the clipboard. Each has a no-op implementation for headless runs
// and one that pipes text into an external program.
package device

import (
	"context"
)

// Speaker reads text aloud. Speak blocks until the utterance ends or ctx is
// cancelled; cancelling ctx must stop the audio.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// NopSpeaker discards every utterance.
type NopSpeaker struct{}

func (NopSpeaker) Speak(ctx context.Context, text string) error { return ctx.Err() }

// NopClipboard discards every copy.
type NopClipboard struct{}

func (NopClipboard) Copy(ctx context.Context, text string) error { return ctx.Err() }

// CommandSpeaker speaks through an external program such as "espeak --stdin".
type CommandSpeaker struct {
	Command Command
}

// Speak implements Speaker. The process is killed when ctx is cancelled.
func (s CommandSpeaker) Speak(ctx context.Context, text string) error {
	_, err := s.Command.Output(ctx, text)
	return err
}

// CommandClipboard copies through an external program such as
// "xclip -selection clipboard" or "pbcopy".
type CommandClipboard struct {
	Command Command
}

// Copy implements Clipboard.
func (c CommandClipboard) Copy(ctx context.Context, text string) error {
	_, err := c.Command.Output(ctx, text)
	return err
}

var (
	_ Speaker   = NopSpeaker{}
	_ Speaker   = CommandSpeaker{}
	_ Clipboard = NopClipboard{}
	_ Clipboard = CommandClipboard{}
)
