// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matthewbaird/offboarding/internal/activity"
	"github.com/matthewbaird/offboarding/internal/handler"
	"github.com/matthewbaird/offboarding/internal/offboarding"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Orchestrator *offboarding.Orchestrator
	Disposition  *offboarding.DispositionEngine
	Activity     activity.Store
	Logger       hclog.Logger
}

// NewRouter registers every route.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handler.Logging(cfg.Logger))
	r.Use(handler.Recovery(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	oh := handler.NewOffboardingHandler(cfg.Orchestrator, cfg.Disposition, cfg.Logger)
	ah := handler.NewActivityHandler(cfg.Activity, cfg.Logger)
	r.Route("/v1/leases/{id}", func(r chi.Router) {
		r.Post("/offboard", oh.Offboard)
		r.Get("/offboarding-status", oh.GetStatus)
		r.Get("/balance", oh.GetBalance)
		r.Post("/balance/disposition", oh.DisposeBalance)
		r.Get("/activity", ah.GetLeaseActivity)
	})
	r.Get("/v1/activity/entity/{entity_type}/{entity_id}", ah.GetEntityActivity)
	r.Get("/v1/activity/summary/{entity_type}/{entity_id}", ah.GetEntitySummary)
	return r
}

// Run starts the HTTP server and shuts it down when ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			cfg.Logger.Warn("shutdown", "error", err)
		}
	}()

	cfg.Logger.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
