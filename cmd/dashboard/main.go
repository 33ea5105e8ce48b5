package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/config"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
	"meterbill-dashboard/internal/service"
	"meterbill-dashboard/internal/session"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	phone := flag.String("phone", "", "Phone number to log in with (omit to reuse a stored session)")
	password := flag.String("password", "", "Password for login")
	watch := flag.Duration("watch", 0, "Re-render the dashboard on this interval (e.g. 30s); 0 renders once")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting billing dashboard...", "api", cfg.API.BaseURL)

	// Wire session and API client: the manager is the client's token
	// source, and its auth-failure handler is the client's 401 hook.
	sessions := session.NewManager(session.NewFileStore(cfg.Session.CredentialsFile))
	client := apiclient.New(cfg.API.BaseURL, cfg.APITimeout(),
		apiclient.WithTokenSource(sessions),
		apiclient.WithAuthFailureHook(sessions.HandleAuthFailure),
	)
	sessions.AttachClient(client)
	sessions.OnTeardown(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
		os.Exit(1)
	})

	ctx := context.Background()

	user, err := establishSession(ctx, sessions, *phone, *password)
	if err != nil {
		logger.Error("Login failed", "error", err)
		log.Fatalf("Login failed: %v", err)
	}

	dashboards := service.NewDashboardService(client, sessions)
	settings := service.NewSettingsService(client, sessions)

	render(ctx, dashboards, settings, user)
	if *watch > 0 {
		ticker := time.NewTicker(*watch)
		defer ticker.Stop()
		for range ticker.C {
			render(ctx, dashboards, settings, user)
		}
	}
}

// establishSession logs in with the provided credentials, or resumes the
// persisted session when none were given.
func establishSession(ctx context.Context, sessions *session.Manager, phone, password string) (*domain.User, error) {
	if phone != "" {
		return sessions.Login(ctx, phone, password)
	}
	user, err := sessions.Resume(ctx)
	if err != nil {
		return nil, fmt.Errorf("no usable stored session, pass -phone and -password: %w", err)
	}
	return user, nil
}

// render prints the per-role dashboard to stdout.
func render(ctx context.Context, dashboards service.DashboardService, settings service.SettingsService, user *domain.User) {
	dash, err := dashboards.Load(ctx)
	if err != nil {
		logger.Error("Failed to load dashboard", "error", err)
		return
	}

	name := user.Name
	if name == "" {
		name = user.PhoneNumber
	}
	fmt.Printf("\n== Dashboard — %s (%s) ==\n", name, user.Role)

	switch dash.Role {
	case domain.RoleAdmin:
		fmt.Printf("Total Users:    %d\n", dash.TotalUsers)
		fmt.Printf("Total Meters:   %d\n", dash.TotalMeters)
		fmt.Printf("Total Readings: %d\n", dash.TotalReadings)
		if dash.Billing != nil {
			fmt.Printf("Total Bills:    %d\n", dash.Billing.TotalBills)
		} else {
			fmt.Printf("Total Bills:    0\n")
		}
	case domain.RoleLandlord:
		fmt.Printf("My Meters:      %d\n", dash.TotalMeters)
		if dash.Billing != nil {
			fmt.Printf("Paid Bills:     %d\n", dash.Billing.PaidBills)
			fmt.Printf("Pending Bills:  %d\n", dash.Billing.PendingBills)
			fmt.Printf("Total Amount:   KES %.2f\n", dash.Billing.TotalAmount)
		} else {
			fmt.Printf("Paid Bills:     0\nPending Bills:  0\nTotal Amount:   KES 0.00\n")
		}
	case domain.RoleTechnician:
		fmt.Printf("Available Meters: %d\n", dash.TotalMeters)
		fmt.Printf("My Readings:      %d\n", dash.TotalReadings)
		fmt.Printf("Today's Readings: %d\n", dash.TodayReadings)
	}

	if rate, err := settings.GetKwhRate(ctx); err == nil {
		fmt.Printf("Default KWh Rate: KES %.2f\n", rate)
	}
	for _, source := range dash.FailedSources {
		fmt.Printf("(warning: %s unavailable, showing zero)\n", source)
	}
}
