// Package api assembles the HTTP surface: route registration and go-chi
// router setup, split into public routes (/health, /metrics, /auth/*) and
// JWT-protected routes (/api/v1/*).
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/api/handlers"
	apmiddleware "github.com/lexabot/lexa/internal/api/middleware"
	domainauth "github.com/lexabot/lexa/internal/domain/auth"
	"github.com/lexabot/lexa/internal/domain/chat"
	"github.com/lexabot/lexa/internal/domain/document"
	"github.com/lexabot/lexa/internal/domain/legal"
	"github.com/lexabot/lexa/internal/infra/config"
	"github.com/lexabot/lexa/internal/infra/eventbus"
	"github.com/lexabot/lexa/internal/infra/llm"
	"github.com/lexabot/lexa/internal/metrics"
)

// NewRouter creates and configures a chi router with all routes, wiring the
// dispatch pipeline (registry, selector, gateway, dispatcher) and the async
// archiver on the way. The returned cleanup func closes the event bus and
// waits for the archiver to drain; call it during shutdown.
func NewRouter(db *sql.DB, cfg config.Config, log *zap.Logger, col *metrics.Collector) (*chi.Mux, func()) {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apmiddleware.Observe(log, col))
	r.Use(chimiddleware.Recoverer)

	// ===== DISPATCH PIPELINE =====

	registry := llm.NewRegistry(llm.RegistryConfig{
		Keys:          cfg.ProviderKeys(),
		Models:        cfg.ProviderModels(),
		Timeout:       cfg.LLMTimeout,
		RatePerSecond: cfg.LLMRatePerSec,
	}, log)
	registry.Probe(context.Background())

	selector := llm.NewSelector(registry, log)
	gateway := llm.NewGateway(registry, log, cfg.LLMTimeout)
	store := chat.NewConversationStore()
	bus := eventbus.New()

	dispatcher := chat.NewDispatcher(store, registry, selector, gateway, bus, col, log)

	// Durable history is written off the request path.
	recorder := chat.NewSQLRecorder(db)
	archiver := chat.NewArchiver(recorder, log)
	archiver.Start(context.Background(), bus)

	// ===== PUBLIC ROUTES (no auth required) =====

	healthHandler := handlers.NewHealthHandler(registry)
	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authHandler := handlers.NewAuthHandler(domainauth.NewService(db, log))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		chatHandler := handlers.NewChatHandler(dispatcher, recorder)
		r.Route("/chat", func(r chi.Router) {
			r.Post("/send", chatHandler.Send)    // POST /api/v1/chat/send
			r.Get("/history", chatHandler.History) // GET /api/v1/chat/history
		})

		legalHandler := handlers.NewLegalHandler(legal.NewService(db, log))
		r.Route("/legal", func(r chi.Router) {
			r.Post("/query", legalHandler.Query)           // POST /api/v1/legal/query
			r.Post("/case-law", legalHandler.SearchCaseLaw) // POST /api/v1/legal/case-law
		})

		documentHandler := handlers.NewDocumentHandler(document.NewService(db, log))
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", documentHandler.Upload)        // POST /api/v1/documents/upload
			r.Get("/list", documentHandler.List)             // GET /api/v1/documents/list
			r.Get("/{id}", documentHandler.Get)              // GET /api/v1/documents/{id}
			r.Post("/{id}/analyze", documentHandler.Analyze) // POST /api/v1/documents/{id}/analyze
		})

		dashboardHandler := handlers.NewDashboardHandler(store, registry, db)
		r.Get("/dashboard/stats", dashboardHandler.Stats) // GET /api/v1/dashboard/stats
	})

	cleanup := func() {
		bus.Close()
		archiver.Wait()
	}
	return r, cleanup
}
