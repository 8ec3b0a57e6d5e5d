// Package sql persists collections as rows of a single key/value table through
// gorm. SQLite and PostgreSQL are supported.
package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Record is one persisted collection.
type Record struct {
	Key       string `gorm:"column:collection_key;primaryKey;size:128"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName overrides the gorm default.
func (Record) TableName() string { return "cardweaver_collections" }

// Config holds the configuration for the SQL storage.
type Config struct {
	// DSN selects the driver by scheme: "sqlite://<file>" or "postgres://...".
	DSN      string
	ReadOnly bool
	Logger   *slog.Logger
}

// Storage implements core.Storage on a gorm database.
type Storage struct {
	db     *gorm.DB
	config Config

	mu        sync.RWMutex
	lastWrite *time.Time
}

// Dialector returns the gorm dialector for a DSN.
func Dialector(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return sqlite.Open(dsn), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported dsn %q: expected sqlite:// or postgres://", dsn)
	}
}

// Open connects to the database named by config.DSN.
func Open(config Config) (*Storage, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	dialector, err := Dialector(config.DSN)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Storage{db: db, config: config}, nil
}

// Initialize migrates the collections table.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.ReadOnly {
		return nil
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

// Read implements core.Storage.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where(&Record{Key: key}).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// Write implements core.Storage with an upsert.
func (s *Storage) Write(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return fmt.Errorf("%w: cannot write %s", core.ErrReadOnly, key)
	}

	now := time.Now()
	rec := Record{Key: key, Value: data, UpdatedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	s.config.Logger.Debug("collection stored", "key", key, "dialect", s.db.Dialector.Name())

	s.mu.Lock()
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Dialect   string     `json:"dialect"`
	ReadOnly  bool       `json:"read_only"`
	LastWrite *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageState{
		Dialect:   s.db.Dialector.Name(),
		ReadOnly:  s.config.ReadOnly,
		LastWrite: s.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sql"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
