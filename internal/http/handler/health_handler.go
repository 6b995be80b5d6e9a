package handler

import (
	"net/http"
	"time"

	"github.com/Makb000/opportunity-tracker/internal/service"
	"github.com/Makb000/opportunity-tracker/internal/store"
	"go.uber.org/zap"
)

// HealthHandler reports backing store connectivity.
type HealthHandler struct {
	datasetService *service.DatasetService
	store          store.DocumentStore
	logger         *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(datasetService *service.DatasetService, st store.DocumentStore, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		datasetService: datasetService,
		store:          st,
		logger:         logger,
	}
}

// Health responds 200 when the document store is reachable and 503
// otherwise. A missing document counts as connected; it is the
// first-run default, not a failure.
//
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err := h.datasetService.Ping(r.Context()); err != nil {
		h.logger.Error("storage health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"storage":   "disconnected",
			"error":     err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": timestamp,
		"storage":   "connected",
		"container": h.store.Container(),
		"blob":      h.store.Blob(),
	})
}
