// Command guardiansim runs the autonomous rescue simulation and serves its
// state over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/guardian-sim/internal/api"
	"github.com/talgya/guardian-sim/internal/config"
	"github.com/talgya/guardian-sim/internal/entropy"
	"github.com/talgya/guardian-sim/internal/sim"
)

func main() {
	configPath := flag.String("config", "guardian.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Guardian — Autonomous Rescue Simulation")
	slog.Info("configuration loaded",
		"scale", cfg.Scale,
		"seed", cfg.Seed,
		"random_positions", cfg.RandomPositions,
		"admin_auth", cfg.AdminKey != "",
	)

	world := sim.New(entropy.New(cfg.Seed), cfg.Scale, cfg.RandomPositions)

	server := &api.Server{
		World:      world,
		AdminKey:   cfg.AdminKey,
		BatchLimit: cfg.BatchLimit,
		Origins:    cfg.CORSOrigins,
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		}
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
