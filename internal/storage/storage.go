// Package storage provides a GORM-based data store for deskmatter.
//
// It supports SQLite (the default, one file next to the desktop app) and
// PostgreSQL with automatic schema migration. Access is exposed through the
// Store interface so the HTTP layer never depends on GORM directly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deskmatter/internal/config"
)

// ErrNotFound is returned when a lookup by identifier matches nothing.
var ErrNotFound = errors.New("record not found")

// Store is the data store collaborator used by the HTTP handlers and the
// background engine. Every repository method is fallible.
type Store interface {
	Matters() MatterRepository
	KV() KVRepository
	Tags() TagRepository
	RepeatTasks() RepeatTaskRepository
	Todos() TodoRepository
	Notifications() NotificationRepository

	// Ping verifies the underlying connection.
	Ping(ctx context.Context) error
}

// Storage wraps the GORM database instance and implements Store.
type Storage struct {
	db            *gorm.DB
	matters       *matterRepository
	kv            *kvRepository
	tags          *tagRepository
	repeatTasks   *repeatTaskRepository
	todos         *todoRepository
	notifications *notificationRepository
}

var _ Store = (*Storage)(nil)

// New initializes a new Storage instance using GORM based on the provided configuration.
//
// Supported drivers:
//   - "sqlite": default, single file owned by the desktop app
//   - "postgres": shared database for power users
//
// All models are auto-migrated on startup.
func New(cfg config.StorageConfig) (*Storage, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sql.DB from GORM: %w", err)
	}

	// Apply connection pool settings from config
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	return newStorage(db), nil
}

func newStorage(db *gorm.DB) *Storage {
	return &Storage{
		db:            db,
		matters:       &matterRepository{Repository: NewRepository[Matter](db, "start_time DESC")},
		kv:            &kvRepository{db: db},
		tags:          &tagRepository{db: db},
		repeatTasks:   &repeatTaskRepository{Repository: NewRepository[RepeatTask](db, "created_at DESC")},
		todos:         &todoRepository{Repository: NewRepository[Todo](db, "created_at DESC")},
		notifications: &notificationRepository{Repository: NewRepository[NotificationRecord](db, "created_at DESC")},
	}
}

// sqliteDSN enables WAL and foreign keys for file databases. In-memory
// databases are passed through and rely on a single pooled connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "?") {
		return dsn
	}
	return fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dsn)
}

func (s *Storage) Matters() MatterRepository             { return s.matters }
func (s *Storage) KV() KVRepository                       { return s.kv }
func (s *Storage) Tags() TagRepository                    { return s.tags }
func (s *Storage) RepeatTasks() RepeatTaskRepository      { return s.repeatTasks }
func (s *Storage) Todos() TodoRepository                  { return s.todos }
func (s *Storage) Notifications() NotificationRepository { return s.notifications }

// DB returns the underlying GORM database instance.
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Dialect returns the active GORM dialect name ("sqlite" or "postgres").
func (s *Storage) Dialect() string {
	return s.db.Dialector.Name()
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve sql.DB for closing: %w", err)
	}
	return sqlDB.Close()
}
