package cardweaver

import (
	"context"
	"log/slog"

	"github.com/aretw0/cardweaver/internal/platform"
	"github.com/aretw0/cardweaver/pkg/core"
)

// --- Types ---

// Store is the entity store for decks, flashcards and notes.
type Store = core.Store

// Config is the content of a data directory's cardweaver.yaml.
type Config = platform.Config

// Capabilities groups the speech, clipboard and text-generation collaborators.
type Capabilities = platform.Capabilities

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// Storage adapters.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQL    = platform.AdapterSQL
	AdapterMemory = platform.AdapterMemory
)

// WithAutoInit creates the data directory and seeds empty collections.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDSN sets the database DSN for the "sql" adapter.
func WithDSN(dsn string) Option {
	return platform.WithDSN(dsn)
}

// WithConfig applies a loaded Config.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithEventBuffer sets the size of each change subscriber buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler registers a callback for filesystem watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens the store kept in dir.
func New(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	return platform.New(ctx, dir, opts...)
}

// Init initializes the storage explicitly.
func Init(ctx context.Context, dir string, opts ...Option) (core.Storage, error) {
	return platform.Init(ctx, dir, opts...)
}

// LoadConfig reads cardweaver.yaml from dir and applies environment overrides.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// NewCapabilities builds the collaborators configured in cfg.
func NewCapabilities(cfg Config, logger *slog.Logger) Capabilities {
	return platform.NewCapabilities(cfg, logger)
}

// --- Safety & Utils ---

// ResolveDataPath determines the directory actually used based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a directory holding a .cardweaver data dir.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
