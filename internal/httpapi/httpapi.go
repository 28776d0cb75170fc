// Package httpapi serves the liveness endpoints, Prometheus metrics and the
// read-only report API next to the bot.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/observability"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store"
)

const (
	loginAttemptsPerMinute = 5
	maxBodyBytes           = 1 << 20
	debtTop                = 5
)

type API struct {
	service *service.Service
	// auth is nil when the report API is disabled.
	auth    *AuthManager
	metrics *observability.Metrics
	logger  *slog.Logger
}

func New(svc *service.Service, auth *AuthManager, metrics *observability.Metrics, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		service: svc,
		auth:    auth,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "http")),
	}
}

func (a *API) Handler() http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	r.Use(a.metrics.Middleware)
	r.Use(a.requestLog)

	r.Get("/", plain("CashFlow Bot is running!"))
	r.Head("/", plain(""))
	r.Get("/health", plain("OK"))
	r.Head("/health", plain(""))
	r.Get("/ping", plain("pong"))
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	if a.auth != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(limitBody)
			r.With(httprate.Limit(
				loginAttemptsPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
				}),
			)).Post("/auth/login", a.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth)
				r.Get("/reports/today", a.handleToday)
				r.Get("/reports/month", a.handleMonth)
				r.Get("/debts/summary", a.handleDebtSummary)
			})
		})
	}
	return r
}

func plain(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func (a *API) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		next.ServeHTTP(w, r)
		a.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Duration("took", time.Since(startedAt)))
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		token := strings.TrimSpace(authorization[len("Bearer "):])
		if _, err := a.auth.ParseToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	resp, err := a.auth.Login(req)
	if errors.Is(err, ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleToday(w http.ResponseWriter, r *http.Request) {
	st, err := a.service.TodayStatement(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleMonth(w http.ResponseWriter, r *http.Request) {
	month, err := optionalInt(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("month must be a number"))
		return
	}
	year, err := optionalInt(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("year must be a number"))
		return
	}
	st, err := a.service.MonthStatement(r.Context(), time.Month(month), year)
	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, errors.New("month must be between 1 and 12"))
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	ov, err := a.service.DebtOverview(r.Context(), debtTop)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// fail maps a ledger failure to a response; backend faults become 503.
func (a *API) fail(w http.ResponseWriter, err error) {
	var fault *store.Fault
	if errors.As(err, &fault) {
		a.metrics.StoreFault(fault.Op)
		a.logger.Error("ledger unavailable", slog.Any("error", err))
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	a.logger.Error("request failed", slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, err)
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies never carry internal details.
	msg := err.Error()
	if status >= 500 {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
