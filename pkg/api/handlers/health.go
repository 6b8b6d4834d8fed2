package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

// Pinger is the part of a catalogue store the readiness probe needs.
type Pinger interface {
	Type() catalogue.Type
	Healthcheck(ctx context.Context) error
}

// HealthHandler handles the liveness and readiness probes.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a health handler. A nil store makes the
// readiness probe fail.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness handles GET /health. It succeeds while the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "dittotape",
	}))
}

// Readiness handles GET /health/ready. It checks the catalogue and answers
// 503 when the catalogue cannot serve media geometry lookups.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("catalogue not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.store.Healthcheck(ctx); err != nil {
		logger.WarnCtx(ctx, "Catalogue healthcheck failed", logger.StoreType(string(h.store.Type())), logger.Err(err))
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("catalogue unhealthy: "+err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"catalogue": string(h.store.Type()),
		"latency":   time.Since(start).String(),
	}))
}
