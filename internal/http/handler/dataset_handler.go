package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Makb000/opportunity-tracker/internal/service"
	"go.uber.org/zap"
)

// DatasetHandler handles whole-document requests: read, full replace,
// bulk merge, and backup download.
type DatasetHandler struct {
	datasetService *service.DatasetService
	logger         *zap.Logger
}

// NewDatasetHandler creates a new DatasetHandler
func NewDatasetHandler(datasetService *service.DatasetService, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// Get returns the full dataset.
//
// GET /api/data
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.datasetService.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load dataset", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ds)
}

// Replace overwrites the whole dataset. The body must be a JSON object;
// missing or non-array collection fields default to empty arrays.
//
// PUT /api/data
func (h *DatasetHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		respondWithError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}

	counts, err := h.datasetService.Replace(r.Context(), body)
	if err != nil {
		h.logger.Error("failed to replace dataset", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"counts":  counts,
	})
}

// Merge applies a document-level merge: only collections supplied as
// arrays replace their counterparts. This is whole-collection
// granularity for bulk sync, not an element-level merge.
//
// PATCH /api/data
func (h *DatasetHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var updates map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		// A valid non-object body supplies no collections and merges
		// nothing; the document is written back unchanged.
		updates = nil
	}

	counts, err := h.datasetService.Merge(r.Context(), updates)
	if err != nil {
		h.logger.Error("failed to merge dataset", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"counts":  counts,
	})
}

// Backup streams the full dataset as a dated download.
//
// GET /api/backup
func (h *DatasetHandler) Backup(w http.ResponseWriter, r *http.Request) {
	ds, err := h.datasetService.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load dataset for backup", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("crm-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(ds)
}
