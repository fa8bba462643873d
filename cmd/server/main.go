package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/offboarding/internal/app"
	"github.com/matthewbaird/offboarding/internal/config"
	"github.com/matthewbaird/offboarding/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := cfg.Logger("offboarding")

	a, err := app.New(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := server.Run(ctx, server.Config{
		Port:         cfg.Port,
		Orchestrator: a.Orchestrator,
		Disposition:  a.Disposition,
		Activity:     a.Activity,
		Logger:       logger,
	}); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
