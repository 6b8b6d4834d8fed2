package handlers

import (
	"mime"
	"net/http"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/batch"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/manager"
)

// MaxBatchBytes bounds the size of a batch request body.
const MaxBatchBytes = 16 << 20

// RAOHandler computes recall orders for posted batches.
type RAOHandler struct {
	params    manager.Params
	catalogue catalogue.Catalogue
	metrics   metrics.RAOMetrics
}

// NewRAOHandler creates a handler planning with the configured RAO params.
// Each request is planned as a fresh mount of the batch tape.
func NewRAOHandler(params manager.Params, cat catalogue.Catalogue, m metrics.RAOMetrics) *RAOHandler {
	return &RAOHandler{params: params, catalogue: cat, metrics: m}
}

// Order handles POST /api/v1/rao.
//
// The body is a batch document in JSON, or YAML when the Content-Type says
// so. The response is the plan: order, fseqs, algorithm and stage timings.
func (h *RAOHandler) Order(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(r)
	if !ok {
		UnsupportedMediaType(w, "batch must be JSON or YAML")
		return
	}

	doc, err := batch.Decode(http.MaxBytesReader(w, r.Body, MaxBatchBytes), format)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	var opts []manager.Option
	if h.metrics != nil {
		opts = append(opts, manager.WithMetrics(h.metrics))
	}

	plan, err := doc.Plan(r.Context(), h.params, h.catalogue, opts...)
	if err != nil {
		writeRAOError(w, r, doc.VID, err)
		return
	}

	WriteJSONOK(w, plan)
}

// requestFormat maps the request Content-Type to a batch format. JSON is
// assumed when no Content-Type is given.
func requestFormat(r *http.Request) (batch.Format, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return batch.FormatJSON, true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "application/json":
		return batch.FormatJSON, true
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return batch.FormatYAML, true
	default:
		return "", false
	}
}

// writeRAOError maps a planning failure to a problem response.
func writeRAOError(w http.ResponseWriter, r *http.Request, vid string, err error) {
	problem := &Problem{
		Type:   "about:blank",
		Detail: err.Error(),
	}
	if code := rao.CodeOf(err); code != 0 {
		problem.Code = code.String()
	}

	switch {
	case catalogue.IsNotFound(err):
		problem.Status, problem.Title = http.StatusNotFound, "Not Found"
	case rao.IsConfigurationError(err), rao.IsGeometryError(err):
		problem.Status, problem.Title = http.StatusUnprocessableEntity, "Unprocessable Entity"
	case rao.IsNativeOrderError(err):
		problem.Status, problem.Title = http.StatusBadGateway, "Bad Gateway"
	case r.Context().Err() != nil:
		problem.Status, problem.Title = http.StatusServiceUnavailable, "Service Unavailable"
	default:
		problem.Status, problem.Title = http.StatusInternalServerError, "Internal Server Error"
	}

	logger.WarnCtx(r.Context(), "RAO request failed",
		logger.VID(vid),
		"status", problem.Status,
		logger.Err(err),
	)
	writeProblem(w, problem)
}
