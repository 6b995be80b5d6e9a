package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/http/handler"
	"github.com/Makb000/opportunity-tracker/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	rateLimiter    *middleware.RateLimiter
	datasetHandler *handler.DatasetHandler
	entityHandler  *handler.EntityHandler
	healthHandler  *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	datasetHandler *handler.DatasetHandler,
	entityHandler *handler.EntityHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		rateLimiter:    rateLimiter,
		datasetHandler: datasetHandler,
		entityHandler:  entityHandler,
		healthHandler:  healthHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.healthHandler.Health)
		r.Get("/backup", rt.datasetHandler.Backup)

		r.Route("/data", func(r chi.Router) {
			r.Get("/", rt.datasetHandler.Get)
			r.Put("/", rt.datasetHandler.Replace)
			r.Patch("/", rt.datasetHandler.Merge)
		})

		// Per-element routes; {collection} is validated in the handler
		r.Patch("/{collection}/{id}", rt.entityHandler.Upsert)
		r.Delete("/{collection}/{id}", rt.entityHandler.Delete)
	})

	// Unmatched non-API routes fall back to the SPA entry point
	r.NotFound(rt.serveSPA)

	return r
}

// serveSPA serves static frontend assets, falling back to index.html
// for client-side routes. API paths never reach the fallback content.
func (rt *Router) serveSPA(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"not_found","title":"Not Found","status":404}`))
		return
	}

	path := filepath.Join(rt.cfg.Static.Dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}
	http.ServeFile(w, r, filepath.Join(rt.cfg.Static.Dir, "index.html"))
}
