package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

// CatalogueHandler serves read-only views of the catalogue.
type CatalogueHandler struct {
	store catalogue.Store
}

// NewCatalogueHandler creates a catalogue handler.
func NewCatalogueHandler(store catalogue.Store) *CatalogueHandler {
	return &CatalogueHandler{store: store}
}

// ListMediaTypes handles GET /api/v1/media-types.
func (h *CatalogueHandler) ListMediaTypes(w http.ResponseWriter, r *http.Request) {
	mts, err := h.store.ListMediaTypes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSONOK(w, mts)
}

// GetMediaType handles GET /api/v1/media-types/{name}.
func (h *CatalogueHandler) GetMediaType(w http.ResponseWriter, r *http.Request) {
	mt, err := h.store.GetMediaType(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSONOK(w, mt)
}

// ListTapes handles GET /api/v1/tapes.
func (h *CatalogueHandler) ListTapes(w http.ResponseWriter, r *http.Request) {
	tapes, err := h.store.ListTapes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSONOK(w, tapes)
}

// GetTape handles GET /api/v1/tapes/{vid}.
func (h *CatalogueHandler) GetTape(w http.ResponseWriter, r *http.Request) {
	tape, err := h.store.GetTape(r.Context(), chi.URLParam(r, "vid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSONOK(w, tape)
}

func (h *CatalogueHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if catalogue.IsNotFound(err) {
		NotFound(w, err.Error())
		return
	}
	logger.ErrorCtx(r.Context(), "Catalogue request failed", logger.Err(err))
	InternalServerError(w, "catalogue unavailable")
}
