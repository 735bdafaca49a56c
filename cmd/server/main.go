// Package main provides the standalone Sentimeter API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamilpajak/sentimeter/internal/app"
	"github.com/kamilpajak/sentimeter/internal/config"
	"github.com/kamilpajak/sentimeter/internal/logging"
	"github.com/kamilpajak/sentimeter/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sentimeter-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", os.Getenv("SENTIMETER_CONFIG"), "Path to YAML config file")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	svc := app.New(cfg, &http.Client{}, logger)
	api := app.NewAPI(cfg, svc, logger)

	srv, err := server.Start(server.Options{
		Addr:          cfg.HTTP.Addr,
		Handler:       api,
		Sweeper:       api,
		SweepInterval: time.Minute,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	logger.Info("server started", "addr", srv.Addr(), "default_model", cfg.Analysis.DefaultModel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = srv.Wait(ctx, 30*time.Second)
	logger.Info("server stopped")
	return err
}
