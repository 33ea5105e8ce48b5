package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/config"
	"meterbill-dashboard/internal/jobs"
	"meterbill-dashboard/internal/logger"
	"meterbill-dashboard/internal/scheduler"
	"meterbill-dashboard/internal/service"
	"meterbill-dashboard/internal/session"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	phone := flag.String("phone", "", "Admin phone number")
	password := flag.String("password", "", "Admin password")
	runOnce := flag.Bool("run-once", false, "Run the overdue reclassification once and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting billing cronjob runner...", "api", cfg.API.BaseURL)

	// The job runner holds its own admin session; credentials are not
	// persisted to disk for an unattended process.
	sessions := session.NewManager(session.NewMemoryStore())
	client := apiclient.New(cfg.API.BaseURL, cfg.APITimeout(),
		apiclient.WithTokenSource(sessions),
		apiclient.WithAuthFailureHook(sessions.HandleAuthFailure),
	)
	sessions.AttachClient(client)

	if *phone == "" || *password == "" {
		log.Fatal("Both -phone and -password are required")
	}
	if _, err := sessions.Login(context.Background(), *phone, *password); err != nil {
		logger.Error("Admin login failed", "error", err)
		log.Fatalf("Admin login failed: %v", err)
	}

	billing := service.NewBillingService(client, sessions)
	jobRunner := jobs.NewJobRunner(billing, cfg)

	if *runOnce {
		jobRunner.UpdateOverdueBills()
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	logger.Info("Cronjob runner stopped")
}
