package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Makb000/opportunity-tracker/internal/domain"
	"github.com/Makb000/opportunity-tracker/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EntityHandler handles per-element requests addressed by collection
// name and id.
type EntityHandler struct {
	datasetService *service.DatasetService
	logger         *zap.Logger
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(datasetService *service.DatasetService, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// Upsert merges the request body into the addressed element, creating
// it when absent. The path id is authoritative; an id in the body is
// ignored. Unknown fields in the patch pass through unvalidated.
//
// PATCH /api/{collection}/{id}
func (h *EntityHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if !domain.IsValidCollection(collection) {
		respondWithError(w, http.StatusBadRequest, "Unknown collection: "+collection)
		return
	}

	var patch domain.Entity
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	entity, err := h.datasetService.Upsert(r.Context(), collection, id, patch)
	if err != nil {
		h.logger.Error("failed to upsert entity",
			zap.Error(err),
			zap.String("collection", collection),
			zap.String("entity_id", id),
		)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{"success": true}
	resp[domain.SingularName(collection)] = entity
	respondJSON(w, http.StatusOK, resp)
}

// Delete removes the addressed element. Deleting an opportunity also
// removes its dependent activities in the same write.
//
// DELETE /api/{collection}/{id}
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if !domain.IsValidCollection(collection) {
		respondWithError(w, http.StatusBadRequest, "Unknown collection: "+collection)
		return
	}

	if err := h.datasetService.Delete(r.Context(), collection, id); err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			respondWithError(w, http.StatusNotFound, "Entity not found: "+id)
			return
		}
		h.logger.Error("failed to delete entity",
			zap.Error(err),
			zap.String("collection", collection),
			zap.String("entity_id", id),
		)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": id,
	})
}
