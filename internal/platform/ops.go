package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/cardweaver/pkg/adapters/fs"
	"github.com/aretw0/cardweaver/pkg/adapters/memory"
	"github.com/aretw0/cardweaver/pkg/adapters/sql"
	"github.com/aretw0/cardweaver/pkg/core"
)

// sqliteFile is the database created inside the data directory when the "sql"
// adapter runs without a DSN.
const sqliteFile = "cardweaver.db"

// Init builds and initializes the storage selected by the options.
// The uri argument is adapter-specific: a data directory for "fs", a DSN (or a
// data directory for an embedded SQLite file) for "sql".
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.storage != nil {
		return o.storage, o.storage.Initialize(ctx)
	}

	var (
		storage core.Storage
		err     error
	)
	switch o.adapter {
	case AdapterFS, "":
		storage = initFS(uri, o)
	case AdapterSQL:
		storage, err = initSQL(uri, o)
	case AdapterMemory:
		storage = memory.NewStorage()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := storage.Initialize(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

// resolvePath applies the dev sandbox rules to a data directory.
func resolvePath(path string, o *options) string {
	// Read-only access is inherently safe; an explicit opt-out is trusted.
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypassSafety)
	resolved := ResolveDataPath(path, useTemp)

	logger := o.log()
	if IsDevRun() {
		switch {
		case o.readOnly:
			logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if useTemp && resolved != filepath.Clean(path) {
		logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(path string, o *options) core.Storage {
	resolved := resolvePath(path, o)
	return fs.NewStorage(fs.Config{
		Path:         resolved,
		AutoInit:     o.autoInit,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
}

// initSQL opens the database. Without a DSN an embedded SQLite file is kept in
// the (sandboxed) data directory.
func initSQL(uri string, o *options) (core.Storage, error) {
	dsn := o.dsn
	if dsn == "" {
		if _, err := sql.Dialector(uri); err == nil {
			dsn = uri
		}
	}
	if dsn == "" {
		dir := resolvePath(uri, o)
		if !o.readOnly {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		dsn = "sqlite://" + filepath.Join(dir, sqliteFile)
	}
	return sql.Open(sql.Config{
		DSN:      dsn,
		ReadOnly: o.readOnly,
		Logger:   o.logger,
	})
}
