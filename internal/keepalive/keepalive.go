// Package keepalive pings the bot's own public URL so free-tier hosts do not
// put the process to sleep.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func New(url string, interval time.Duration, logger *slog.Logger) *Pinger {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With(slog.String("component", "keepalive")),
	}
}

// Run pings once per interval until ctx is done. Failed pings are logged and
// never stop the loop.
func (p *Pinger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.logger.Info("keepalive started", slog.String("url", p.url), slog.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				p.logger.Warn("keepalive ping failed", slog.Any("error", err))
			}
		}
	}
}

func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("keepalive: %s returned %d", p.url, res.StatusCode)
	}
	p.logger.Debug("keepalive ok", slog.Int("status", res.StatusCode))
	return nil
}
