package platform

import (
	"log/slog"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Storage adapters selectable by name.
const (
	AdapterFS     = "fs"
	AdapterSQL    = "sql"
	AdapterMemory = "memory"
)

// options holds the internal configuration for the cardweaver service.
type options struct {
	storage      core.Storage
	logger       *slog.Logger
	adapter      string
	dsn          string
	autoInit     bool
	mustExist    bool
	readOnly     bool
	forceTemp    bool
	devSafety    bool
	eventBuffer  int
	errorHandler func(error)
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		devSafety: true,
	}
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// WithConfig applies the values of a loaded Config. Explicit options passed
// after it win.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.Adapter != "" {
			o.adapter = cfg.Adapter
		}
		if cfg.DSN != "" {
			o.dsn = cfg.DSN
		}
		if cfg.ReadOnly {
			o.readOnly = true
		}
	}
}

// WithAutoInit creates the data directory and seeds empty collections.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom storage adapter (e.g. memory in tests).
// If provided, the adapter selection is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sql" or
// "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDSN sets the database DSN for the "sql" adapter.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithEventBuffer sets the size of each change subscriber buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWatcherErrorHandler registers a callback for errors raised by the
// filesystem watcher, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Every write returns core.ErrReadOnly.
// 2. Initialization (mkdir, seeding, migrations) is skipped.
// 3. The dev sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the data directory is re-rooted into a temporary
// directory so development runs never touch real study data.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
