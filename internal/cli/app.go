package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/adminpanel/internal/config"
	"github.com/dmitrijs2005/adminpanel/internal/events"
	"github.com/dmitrijs2005/adminpanel/internal/identity"
	"github.com/dmitrijs2005/adminpanel/internal/logging"
	"github.com/dmitrijs2005/adminpanel/internal/settings"
	"github.com/dmitrijs2005/adminpanel/internal/stats"
	"github.com/dmitrijs2005/adminpanel/internal/storage"
	"github.com/dmitrijs2005/adminpanel/internal/tasks"
)

// App wires the stores and services together and drives the interactive
// session. It is built once in main and owns the storage backend for the
// lifetime of the process.
type App struct {
	config  *config.Config
	log     logging.Logger
	backend storage.Backend

	ids      *identity.Store
	tasks    *tasks.Service
	events   *events.Service
	settings *settings.Service
	stats    *stats.Service

	reader    *bufio.Reader
	opTimeout time.Duration
	now       func() time.Time
}

// NewApp opens the configured storage backend, restores a persisted session
// if one exists, and builds the service graph.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg.LogLevel)

	backend, err := storage.Open(ctx, cfg.StorageDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	ids := identity.NewStore(backend, logger, cfg.BcryptCost)
	if err := ids.Hydrate(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	ts := tasks.NewService(backend, logger)
	es := events.NewService(backend, logger)
	ss := settings.NewService(backend, ids, logger)
	st := stats.NewService(ids, ts, es)

	return &App{
		config:    cfg,
		log:       logger,
		backend:   backend,
		ids:       ids,
		tasks:     ts,
		events:    es,
		settings:  ss,
		stats:     st,
		reader:    bufio.NewReader(os.Stdin),
		opTimeout: cfg.OpTimeout,
		now:       time.Now,
	}, nil
}

func newLogger(level string) logging.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	return logging.NewSlogLogger(slog.New(h))
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.backend.Close()

	fmt.Println("Admin panel CLI (type 'help' for commands)")
	if u := a.ids.Current(); u != nil {
		fmt.Printf("Restored session for %s\n", u.Email)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.ids.Current() != nil
}

func (a *App) getStatus() string {
	if u := a.ids.Current(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return ""
}

// opCtx derives the per-command context. Commands never outlive OpTimeout.
func (a *App) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opTimeout)
}
