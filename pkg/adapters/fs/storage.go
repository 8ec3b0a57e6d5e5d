// Package fs persists collections as JSON files inside a data directory.
//
// Each storage key maps to "<dir>/<key>.json". Writes are atomic (temp file +
// rename) so a crash never leaves a half-written collection behind.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cardweaver/pkg/core"
)

// FileExt is the extension of collection files.
const FileExt = ".json"

// Storage implements core.Storage on top of the local filesystem.
type Storage struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path string
	// AutoInit seeds missing collection files with an empty list on Initialize.
	AutoInit bool
	// MustExist makes Initialize fail when Path is missing instead of creating it.
	MustExist bool
	// ReadOnly rejects every Write with core.ErrReadOnly.
	ReadOnly     bool
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		Path:   config.Path,
		config: config,
	}
}

// Initialize prepares the data directory.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
	} else if !s.config.ReadOnly {
		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if !s.config.AutoInit || s.config.ReadOnly {
		return nil
	}

	for _, key := range []string{core.DecksKey, core.NotesKey} {
		path, err := s.filename(key)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		s.config.Logger.Debug("seeding collection", "key", key, "path", path)
		if err := writeFileAtomic(path, []byte("[]\n"), 0644); err != nil {
			return fmt.Errorf("failed to seed %s: %w", key, err)
		}
	}
	return nil
}

// Read implements core.Storage.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.filename(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, true, nil
}

// Write implements core.Storage. The payload is re-indented for readability.
func (s *Storage) Write(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return fmt.Errorf("%w: cannot write %s", core.ErrReadOnly, key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.filename(key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		// Not JSON; store verbatim.
		buf.Reset()
		buf.Write(data)
	}
	buf.WriteByte('\n')

	if err := writeFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// Watch reports changes to collection files until ctx is cancelled. The watcher
// runs under a supervisor that restarts it when fsnotify fails.
func (s *Storage) Watch(ctx context.Context) (<-chan core.Event, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", s.Path, err)
	}
	return startWatch(ctx, s)
}

func (s *Storage) filename(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.Path, key+FileExt), nil
}

// keyFor maps a file path back to its storage key.
func keyFor(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, TempFilePrefix) || filepath.Ext(base) != FileExt {
		return "", false
	}
	return strings.TrimSuffix(base, FileExt), true
}

func (s *Storage) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.config.Logger.Error("fs storage error", "error", err)
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
