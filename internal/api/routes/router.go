package routes

import (
	"net/http"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/handlers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/middleware"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(r *http.Request) error

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler           *handlers.AuthHandler
	documentHandler       *handlers.DocumentHandler
	policyHandler         *handlers.PolicyHandler
	categorizationHandler *handlers.CategorizationHandler
	sseHandler            *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	health          HealthChecker
}

// Handlers groups the HTTP handlers served by the router. A nil AuthHandler
// or SSEHandler leaves its routes unregistered.
type Handlers struct {
	Auth           *handlers.AuthHandler
	Documents      *handlers.DocumentHandler
	Policies       *handlers.PolicyHandler
	Categorization *handlers.CategorizationHandler
	SSE            *handlers.SSEHandler
}

// NewRouter creates a new router
func NewRouter(h Handlers, cacheMiddleware *middleware.CacheMiddleware, metrics *observability.Metrics, health HealthChecker) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		authHandler:           h.Auth,
		documentHandler:       h.Documents,
		policyHandler:         h.Policies,
		categorizationHandler: h.Categorization,
		sseHandler:            h.SSE,
		cacheMiddleware:       cacheMiddleware,
		metrics:               metrics,
		health:                health,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.handleHealth)

	if r.authHandler != nil {
		r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	}

	// Documents
	r.mux.HandleFunc("POST /api/documents", r.documentHandler.UploadDocument)
	r.mux.HandleFunc("GET /api/documents/{id}", r.documentHandler.GetDocument)
	r.mux.HandleFunc("POST /api/documents/{id}/process", r.documentHandler.ProcessDocument)
	r.mux.HandleFunc("POST /api/documents/{id}/review", r.documentHandler.ReviewDocument)

	// Policies and red flags
	r.mux.HandleFunc("GET /api/policies/{id}", r.policyHandler.GetPolicy)
	r.mux.HandleFunc("GET /api/policies/{id}/red-flags", r.policyHandler.ListRedFlags)
	r.mux.HandleFunc("GET /api/policies/{id}/red-flags/export", r.policyHandler.ExportRedFlags)
	r.mux.HandleFunc("POST /api/red-flags/preview", r.policyHandler.PreviewRedFlags)

	// Categories
	r.mux.HandleFunc("POST /api/categorize/benefit", r.categorizationHandler.CategorizeBenefit)
	r.mux.HandleFunc("GET /api/categories", r.categorizationHandler.ListCategories)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/documents/{id}", r.sseHandler.StreamDocumentUpdates)
	}

	// Middleware is applied inside out; CORS wraps everything so cached
	// responses get headers too.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if r.health != nil {
		if err := r.health(req); err != nil {
			observability.LoggerFromContext(req.Context()).Warn().Err(err).Msg("health check failed")
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
