package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflowbot/internal/access"
	"cashflowbot/internal/app"
	"cashflowbot/internal/bot"
	"cashflowbot/internal/config"
	"cashflowbot/internal/conversation"
	"cashflowbot/internal/httpapi"
	"cashflowbot/internal/keepalive"
	"cashflowbot/internal/observability"
	"cashflowbot/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cashflowbot stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireBot(); err != nil {
		return err
	}
	if err := app.ValidateReportSecurity(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ledger, err := app.OpenLedger(startCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("close ledger", slog.Any("error", err))
		}
	}()
	if err := app.InitLedger(startCtx, ledger.Repo); err != nil {
		// Tables can be fixed while the bot is up; every later call surfaces
		// its own fault.
		logger.Warn("ledger init failed", slog.Any("error", err))
	}

	sessions, closeSessions := app.OpenSessions(startCtx, cfg, logger)
	defer func() { _ = closeSessions() }()

	metrics := observability.NewMetrics()
	gate := access.New(cfg.AllowedUserID)
	if gate.Open() {
		logger.Warn("ALLOWED_USER_ID is not set, every Telegram user can use the bot")
	}

	svc := service.New(ledger.Repo, time.Now)
	engine := conversation.New(svc, sessions, gate, metrics, logger)

	tg, err := bot.Connect(cfg.BotToken, logger)
	if err != nil {
		return err
	}
	telegramBot := bot.New(tg, engine, logger)

	server, err := newServer(cfg, svc, metrics, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer stop()
		return telegramBot.Run(gctx)
	})
	if cfg.KeepaliveURL != "" {
		pinger := keepalive.New(cfg.KeepaliveURL, cfg.KeepaliveInterval, logger)
		g.Go(func() error {
			return pinger.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("cashflowbot stopped")
	return err
}

func newServer(cfg *config.Config, svc *service.Service, metrics *observability.Metrics, logger *slog.Logger) (*http.Server, error) {
	var auth *httpapi.AuthManager
	if cfg.ReportsEnabled() {
		var err error
		auth, err = httpapi.NewAuthManager(cfg.ReportSecret, cfg.ReportTokenTTL, cfg.ReportPassword)
		if err != nil {
			return nil, err
		}
		logger.Info("report api enabled")
	}
	api := httpapi.New(svc, auth, metrics, logger)

	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}
