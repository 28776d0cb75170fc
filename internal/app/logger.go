// Package app wires configuration into the concrete ledger, session and
// logging components shared by the bot binary and the ledgerctl CLI.
package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"cashflowbot/internal/config"
)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
}

func newLogger(w io.Writer, format string, level string) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
