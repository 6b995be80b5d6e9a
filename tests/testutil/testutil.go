// Package testutil provides shared setup helpers for API tests. Each
// test gets a fully wired router backed by a throwaway local document
// store, so handler tests exercise the real routing, middleware, and
// persistence paths.
package testutil

import (
	"net/http"
	"testing"

	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/http/handler"
	"github.com/Makb000/opportunity-tracker/internal/http/middleware"
	"github.com/Makb000/opportunity-tracker/internal/http/router"
	"github.com/Makb000/opportunity-tracker/internal/service"
	"github.com/Makb000/opportunity-tracker/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestAPI bundles a wired router with the pieces tests need to reach
// behind it.
type TestAPI struct {
	Handler http.Handler
	Config  *config.Config
	Store   store.DocumentStore
	Service *service.DatasetService
}

// NewTestConfig returns a config suitable for tests: local storage in a
// temp directory, rate limiting off, permissive CORS.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			Name:        "opportunity-tracker-test",
			Environment: "development",
			Port:        0,
		},
		Storage: config.StorageConfig{
			Mode:          "local",
			LocalBasePath: t.TempDir(),
			FileName:      "crm-data.json",
		},
		Static: config.StaticConfig{
			Dir: t.TempDir(),
		},
		CORS: config.CORSConfig{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		},
		Security: config.SecurityConfig{
			ContentTypeNosniff:    true,
			FrameOptions:          "DENY",
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}
}

// SetupAPI wires the full HTTP stack against a fresh local store.
func SetupAPI(t *testing.T) *TestAPI {
	t.Helper()

	cfg := NewTestConfig(t)
	logger := zap.NewNop()

	st, err := store.NewDocumentStore(&cfg.Storage, logger)
	require.NoError(t, err)

	datasetService := service.NewDatasetService(st, logger)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, logger)

	rt := router.NewRouter(
		cfg,
		logger,
		rateLimiter,
		handler.NewDatasetHandler(datasetService, logger),
		handler.NewEntityHandler(datasetService, logger),
		handler.NewHealthHandler(datasetService, st, logger),
	)

	return &TestAPI{
		Handler: rt.Setup(),
		Config:  cfg,
		Store:   st,
		Service: datasetService,
	}
}
