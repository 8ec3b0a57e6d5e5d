package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed process may keep its pipes open.
const waitDelay = 500 * time.Millisecond

// Command is an external program fed through stdin.
type Command struct {
	Name   string
	Args   []string
	Logger *slog.Logger
}

// ParseCommand splits a command line on whitespace. It does not interpret quotes.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("empty command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

// IsInstalled reports whether the program can be found in PATH.
func (c Command) IsInstalled() bool {
	_, err := exec.LookPath(c.Name)
	return err == nil
}

// String renders the command line.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Output runs the command with input on stdin and returns its stdout. Extra
// arguments are appended after the configured ones.
func (c Command) Output(ctx context.Context, input string, extra ...string) ([]byte, error) {
	if c.Name == "" {
		return nil, errors.New("no command configured")
	}
	args := append(append([]string(nil), c.Args...), extra...)
	if c.Logger != nil {
		c.Logger.Debug("executing command", "name", c.Name, "args", args)
	}

	cmd := exec.CommandContext(ctx, c.Name, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s failed: %w\nOutput: %s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
