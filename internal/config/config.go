package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	BotToken string `envconfig:"BOT_TOKEN"`

	Backend               string        `envconfig:"LEDGER_BACKEND" default:"sheets" validate:"oneof=sheets postgres memory"`
	SheetID               string        `envconfig:"SHEET_ID"`
	GoogleCredentials     string        `envconfig:"GOOGLE_CREDENTIALS"`
	GoogleCredentialsFile string        `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"credentials.json"`
	SheetsEndpoint        string        `envconfig:"SHEETS_ENDPOINT"`
	SheetProducts         string        `envconfig:"SHEET_PRODUCTS" default:"Products" validate:"required"`
	SheetSales            string        `envconfig:"SHEET_SALES" default:"Sales" validate:"required"`
	SheetExpenses         string        `envconfig:"SHEET_EXPENSES" default:"Expenses" validate:"required"`
	SheetDebts            string        `envconfig:"SHEET_DEBTS" default:"Debts" validate:"required"`
	DatabaseURL           string        `envconfig:"DATABASE_URL"`
	StoreTimeout          time.Duration `envconfig:"STORE_TIMEOUT" default:"15s" validate:"gt=0"`

	AllowedUserID int64 `envconfig:"ALLOWED_USER_ID" default:"0" validate:"gte=0"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h" validate:"gt=0"`

	Port      string `envconfig:"PORT" default:"10000" validate:"required,numeric"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	ReportSecret   string        `envconfig:"REPORT_SECRET"`
	ReportPassword string        `envconfig:"REPORT_PASSWORD"`
	ReportTokenTTL time.Duration `envconfig:"REPORT_TOKEN_TTL" default:"12h" validate:"gt=0"`

	KeepaliveURL      string        `envconfig:"KEEPALIVE_URL" validate:"omitempty,url"`
	KeepaliveInterval time.Duration `envconfig:"KEEPALIVE_INTERVAL" default:"10m" validate:"gt=0"`
}

// Load reads .env when present, then the process environment. It does not
// require BOT_TOKEN so the CLI can share it; see RequireBot.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.ReportSecret = strings.TrimSpace(cfg.ReportSecret)
	cfg.ReportPassword = strings.TrimSpace(cfg.ReportPassword)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Backend {
	case BackendSheets:
		if c.SheetID == "" {
			return errors.New("SHEET_ID is required for the sheets backend")
		}
		if c.GoogleCredentials == "" && c.GoogleCredentialsFile == "" && c.SheetsEndpoint == "" {
			return errors.New("GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE is required for the sheets backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	}
	if c.ReportSecret != "" && len(c.ReportSecret) < 32 {
		return errors.New("REPORT_SECRET must be at least 32 characters")
	}
	if c.ReportSecret != "" && c.ReportPassword == "" {
		return errors.New("REPORT_PASSWORD is required when REPORT_SECRET is set")
	}
	return nil
}

// RequireBot checks the settings only the bot process needs.
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN must be provided")
	}
	return nil
}

// ReportsEnabled reports whether the HTTP report API should be mounted.
func (c *Config) ReportsEnabled() bool {
	return c.ReportSecret != ""
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
