package service

import (
	"context"
	"fmt"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
)

type settingsService struct {
	client  *apiclient.Client
	session Session
}

// NewSettingsService creates the tariff rate control service.
func NewSettingsService(client *apiclient.Client, session Session) SettingsService {
	return &settingsService{client: client, session: session}
}

// GetKwhRate reads the global default rate. Any authenticated role.
func (s *settingsService) GetKwhRate(ctx context.Context) (float64, error) {
	if !s.session.Can(domain.ActionViewKwhRate) {
		return 0, ErrNotPermitted
	}
	return s.client.GetKwhRate(ctx)
}

// UpdateKwhRate sets the global default rate. Admin-only with a step-up
// confirmation: the admin re-supplies their login password, checked
// server-side against the current account. A non-positive value is
// rejected locally before any network call.
func (s *settingsService) UpdateKwhRate(ctx context.Context, value float64, password string) error {
	if !s.session.Can(domain.ActionUpdateKwhRate) {
		return ErrNotPermitted
	}
	if value <= 0 {
		return fmt.Errorf("Enter a valid positive number: %w", apiclient.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("password confirmation is required: %w", apiclient.ErrValidation)
	}
	if err := s.client.UpdateKwhRate(ctx, value, password); err != nil {
		return err
	}
	logger.Info("Default kWh rate updated", "value", value)
	return nil
}
