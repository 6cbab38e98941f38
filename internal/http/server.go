// Package http exposes the ledger, reports and voice assistant as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"
)

// Store is the ledger as seen by the HTTP layer: everything the services
// use, plus user upserts for authentication and a readiness ping.
type Store interface {
	services.Store
	UpsertUser(ctx context.Context, u core.User) error
	Ping(ctx context.Context) error
}

// Config holds the server settings.
type Config struct {
	Addr               string
	JWTSecret          string
	JWTIssuer          string
	RateLimitPerMinute int
	MaxAudioBytes      int64
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

const (
	defaultRateLimit     = 60
	defaultMaxAudioBytes = 10 << 20
	maxJSONBodyBytes     = 1 << 20
)

// Deps are the collaborators the handlers call into. Voice may be nil,
// which disables the voice endpoint.
type Deps struct {
	Store        Store
	Transactions *services.TransactionService
	Ledger       *services.LedgerService
	Voice        *services.VoiceService
}

type Server struct {
	http.Server
	cfg    Config
	deps   Deps
	logger *log.Logger
	events *log.StructuredLogger
	now    func() time.Time

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps, logger *log.Logger) *Server {
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = defaultRateLimit
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = defaultMaxAudioBytes
	}

	s := &Server{
		cfg:         cfg,
		deps:        deps,
		logger:      logger.WithComponent(log.ComponentHTTP),
		events:      log.NewStructuredLogger(logger),
		now:         time.Now,
		rateLimiter: newRateLimiter(cfg.RateLimitPerMinute),
		metrics:     &securityMetrics{},
	}
	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// WithClock replaces the wall clock used for "today" in reports, for tests.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(s.requestContext)
	r.Use(s.securityHeaders)
	r.Use(s.rateLimit)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/{id}", s.handleGetAccount)
			r.Put("/{id}", s.handleUpdateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleBudgetProgress)
			r.Post("/", s.handleCreateBudget)
			r.Get("/overages", s.handleBudgetOverages)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleGoalsProgress)
			r.Post("/", s.handleCreateGoal)
			r.Get("/{id}", s.handleGetGoal)
			r.Put("/{id}", s.handleUpdateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", s.handleUpcomingBills)
			r.Post("/", s.handleCreateBill)
			r.Put("/{id}", s.handleUpdateBill)
			r.Post("/{id}/pay", s.handlePayBill)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/reports/net-worth", s.handleNetWorth)
		r.Get("/reports/trend", s.handleTrend)
		r.Get("/reports/category-spending", s.handleCategorySpending)
		r.Get("/reports/health-score", s.handleHealthScore)
		r.Get("/spending-chart", s.handleSpendingChart)
		r.Get("/income-expense-trend", s.handleIncomeExpenseChart)

		r.Post("/voice-transaction", s.handleVoiceTransaction)
		r.Get("/voice-suggestions", handleVoiceSuggestions)
	})

	return r
}

// Shutdown drains the HTTP server. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
