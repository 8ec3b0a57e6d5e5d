package platform

import (
	"log/slog"

	"github.com/aretw0/cardweaver/pkg/assistant"
	"github.com/aretw0/cardweaver/pkg/device"
)

// Capabilities are the collaborators a study session can use.
type Capabilities struct {
	Speaker   device.Speaker
	Clipboard device.Clipboard
	// Assistant is always guarded; it reports ErrUnavailable when no program
	// is configured.
	Assistant assistant.Generator
	// HasAssistant is false when Assistant is the unavailable placeholder.
	HasAssistant bool
}

// NewCapabilities builds the collaborators named by cfg. A command line that
// cannot be parsed disables its capability with a warning.
func NewCapabilities(cfg Config, logger *slog.Logger) Capabilities {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	caps := Capabilities{
		Speaker:   device.NopSpeaker{},
		Clipboard: device.NopClipboard{},
		Assistant: assistant.NewGuard(assistant.Unavailable{}, logger),
	}

	if cmd, ok := parseCommand("speech", cfg.SpeechCommand, logger); ok {
		caps.Speaker = device.CommandSpeaker{Command: cmd}
	}
	if cmd, ok := parseCommand("clipboard", cfg.ClipboardCommand, logger); ok {
		caps.Clipboard = device.CommandClipboard{Command: cmd}
	}
	if cmd, ok := parseCommand("assistant", cfg.AssistantCommand, logger); ok {
		caps.Assistant = assistant.NewGuard(assistant.Command{Command: cmd}, logger)
		caps.HasAssistant = true
	}
	return caps
}

func parseCommand(kind, line string, logger *slog.Logger) (device.Command, bool) {
	if line == "" {
		return device.Command{}, false
	}
	cmd, err := device.ParseCommand(line)
	if err != nil {
		logger.Warn("ignoring command", "capability", kind, "error", err)
		return device.Command{}, false
	}
	if !cmd.IsInstalled() {
		logger.Warn("command not found in PATH", "capability", kind, "command", cmd.Name)
	}
	cmd.Logger = logger
	return cmd, true
}
