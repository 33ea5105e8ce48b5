package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meterbill-dashboard/internal/config"
	"meterbill-dashboard/internal/logger"
	"meterbill-dashboard/internal/stub"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting reference backend...", "address", cfg.StubAddress())

	server, err := stub.NewServer(stub.Config{
		JWTSecret:      cfg.Stub.JWTSecret,
		DefaultKwhRate: cfg.Stub.DefaultKwhRate,
		AdminPhone:     cfg.Stub.AdminPhone,
		AdminPassword:  cfg.Stub.AdminPassword,
	})
	if err != nil {
		logger.Error("Failed to build reference backend", "error", err)
		log.Fatalf("Failed to build reference backend: %v", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.StubAddress(),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Reference backend listening", "address", cfg.StubAddress(), "admin_phone", cfg.Stub.AdminPhone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down reference backend...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Reference backend stopped")
}
