package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/api/handlers"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/marmos91/dittotape/pkg/rao/manager"
)

// Dependencies are the collaborators of the API handlers.
type Dependencies struct {
	// Catalogue answers media geometry lookups and catalogue views. It may
	// be nil, in which case the readiness probe fails and only linear,
	// random and native ordering work.
	Catalogue catalogue.Store

	// RAO is the configured mount template. VID and Drive come from each
	// batch.
	RAO manager.Params

	// Metrics records RAO metrics. Nil disables them.
	Metrics metrics.RAOMetrics
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe (catalogue healthcheck)
//   - POST /api/v1/rao - Recall order of a batch
//   - GET /api/v1/media-types[/{name}], GET /api/v1/tapes[/{vid}] - Catalogue views
func NewRouter(deps Dependencies, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	healthHandler := handlers.NewHealthHandler(deps.Catalogue)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	raoHandler := handlers.NewRAOHandler(deps.RAO, deps.Catalogue, deps.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rao", raoHandler.Order)

		if deps.Catalogue != nil {
			catalogueHandler := handlers.NewCatalogueHandler(deps.Catalogue)
			r.Get("/media-types", catalogueHandler.ListMediaTypes)
			r.Get("/media-types/{name}", catalogueHandler.GetMediaType)
			r.Get("/tapes", catalogueHandler.ListTapes)
			r.Get("/tapes/{vid}", catalogueHandler.GetTape)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs each request with the internal logger: start at DEBUG,
// completion at INFO.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}
