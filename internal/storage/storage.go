// Package storage opens the durable key/value backend and exposes it as a
// transactional unit of work. Every read-modify-persist sequence in the
// application runs through Backend.Run so partial writes are never observable.
//
// Known boundary: there is exactly one writer per deployment (the single
// admin process). Concurrent writers from several processes against the same
// SQLite file are not guarded beyond what the engine itself provides.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/adminpanel/internal/dbx"
	"github.com/dmitrijs2005/adminpanel/internal/migrations"
	"github.com/dmitrijs2005/adminpanel/internal/repositories/kv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Backend is a transactional handle over the kv namespace.
type Backend interface {
	// Run executes fn inside a single transactional unit. On error the
	// transaction is rolled back and nothing fn wrote is visible.
	Run(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error
	Close() error
}

// Open builds a Backend for the given driver. SQLite and PostgreSQL backends
// run embedded goose migrations before returning; the memory backend needs
// none.
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(ctx, dsn)
	case DriverPostgres:
		return openPostgres(ctx, dsn)
	case DriverMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", driver)
	}
}

type sqlBackend struct {
	db   *sql.DB
	repo func(db dbx.DBTX) kv.Repository
}

func (b *sqlBackend) Run(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, b.repo(tx))
	})
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}

func openSQLite(ctx context.Context, dsn string) (*sqlBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// The modernc driver serializes writes per connection; a single
	// connection also keeps :memory: databases alive for the process.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, "sqlite3", migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqlBackend{db: db, repo: func(db dbx.DBTX) kv.Repository { return kv.NewSQLiteRepository(db) }}, nil
}

func openPostgres(ctx context.Context, dsn string) (*sqlBackend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening postgres database: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}

	if err := runMigrations(ctx, db, "postgres", migrations.Postgres, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqlBackend{db: db, repo: func(db dbx.DBTX) kv.Repository { return kv.NewPostgresRepository(db) }}, nil
}

func runMigrations(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	return nil
}

type memoryBackend struct {
	repo *kv.InMemoryRepository
}

// NewMemoryBackend returns a Backend over a process-local map. Run is not
// transactional in the rollback sense; with a single writer the sequencing is
// equivalent.
func NewMemoryBackend() Backend {
	return &memoryBackend{repo: kv.NewInMemoryRepository()}
}

func (b *memoryBackend) Run(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error {
	return fn(ctx, b.repo)
}

func (b *memoryBackend) Close() error { return nil }
