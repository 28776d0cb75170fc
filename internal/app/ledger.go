package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cashflowbot/internal/config"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
	"cashflowbot/internal/store/memory"
	pgstore "cashflowbot/internal/store/postgres"
	"cashflowbot/internal/store/sheets"
)

// Ledger is the opened repository plus whatever must be released on exit.
type Ledger struct {
	Repo    store.Repository
	Backend string
	closers []func() error
}

func (l *Ledger) Close() error {
	var first error
	for _, closeFn := range l.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenLedger builds the backend selected by LEDGER_BACKEND and bounds every
// call with STORE_TIMEOUT. There is no silent fallback: a configured backend
// that cannot be reached is an error.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Ledger, error) {
	ledger := &Ledger{Backend: cfg.Backend}
	var repo store.Repository

	switch cfg.Backend {
	case config.BackendSheets:
		repo = sheets.New(sheets.Config{
			SpreadsheetID:   cfg.SheetID,
			CredentialsJSON: cfg.GoogleCredentials,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Endpoint:        cfg.SheetsEndpoint,
			Timeout:         cfg.StoreTimeout,
			Tables: sheets.Tables{
				Products: cfg.SheetProducts,
				Sales:    cfg.SheetSales,
				Expenses: cfg.SheetExpenses,
				Debts:    cfg.SheetDebts,
			},
		})
	case config.BackendPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable: %w", err)
		}
		repo = pg
		ledger.closers = append(ledger.closers, pg.Close)
	case config.BackendMemory:
		repo = memory.NewSeeded()
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}

	ledger.Repo = store.WithTimeout(repo, cfg.StoreTimeout)
	logger.Info("ledger ready", slog.String("backend", cfg.Backend))
	return ledger, nil
}

// InitLedger prepares tables or header rows when the backend supports it.
func InitLedger(ctx context.Context, repo store.Repository) error {
	in, ok := repo.(store.Initializer)
	if !ok {
		return nil
	}
	return in.Init(ctx)
}

// OpenSessions prefers Redis when REDIS_ADDR is set and reachable; otherwise
// drafts live in process memory with a janitor evicting stale ones. The
// returned func releases the store.
func OpenSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func() error) {
	if cfg.RedisAddr != "" {
		redisStore := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, keeping sessions in memory", slog.Any("error", err))
			_ = redisStore.Close()
		} else {
			logger.Info("sessions: redis", slog.String("addr", cfg.RedisAddr))
			return redisStore, redisStore.Close
		}
	}

	mem := session.NewMemoryStore(cfg.SessionTTL)
	janitorCtx, stop := context.WithCancel(context.Background())
	go mem.RunJanitor(janitorCtx, janitorInterval(cfg))
	logger.Info("sessions: memory")
	return mem, func() error {
		stop()
		return nil
	}
}

func janitorInterval(cfg *config.Config) time.Duration {
	interval := cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}
