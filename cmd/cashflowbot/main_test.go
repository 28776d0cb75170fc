package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cashflowbot/internal/config"
	"cashflowbot/internal/observability"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store/memory"
)

func testServer(t *testing.T, cfg *config.Config) *http.Server {
	t.Helper()
	svc := service.New(memory.New(), time.Now)
	server, err := newServer(cfg, svc, observability.NewMetrics(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func TestNewServerWithoutReports(t *testing.T) {
	server := testServer(t, &config.Config{Port: "10000"})
	if server.Addr != ":10000" {
		t.Fatalf("unexpected addr %q", server.Addr)
	}

	res := httptest.NewRecorder()
	server.Handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`)))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected report routes to be absent, got %d", res.Code)
	}
}

func TestNewServerWithReports(t *testing.T) {
	server := testServer(t, &config.Config{
		Port:           "10000",
		ReportSecret:   "0123456789abcdef0123456789abcdef",
		ReportPassword: "so-tay-739154",
		ReportTokenTTL: time.Hour,
	})

	res := httptest.NewRecorder()
	server.Handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"password":"so-tay-739154"}`)))
	if res.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", res.Code, res.Body.String())
	}
}
