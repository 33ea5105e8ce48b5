package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin, adminSession := e.adminSession()
	settings := NewSettingsService(admin, adminSession)

	t.Run("Rate starts at the configured default", func(t *testing.T) {
		rate, err := settings.GetKwhRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, testDefaultRate, rate)
	})

	t.Run("Admin updates the rate with password confirmation", func(t *testing.T) {
		err := settings.UpdateKwhRate(ctx, 32.50, testAdminPassword)
		require.NoError(t, err)

		rate, err := settings.GetKwhRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 32.50, rate)
	})

	t.Run("Wrong confirmation password leaves the rate unchanged", func(t *testing.T) {
		err := settings.UpdateKwhRate(ctx, 99.99, "not-the-password")
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)

		rate, err := settings.GetKwhRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 32.50, rate)
	})

	t.Run("Non-positive value is rejected before any request", func(t *testing.T) {
		before := e.requestCount()
		err := settings.UpdateKwhRate(ctx, -5, testAdminPassword)
		assert.ErrorIs(t, err, apiclient.ErrValidation)
		assert.Contains(t, err.Error(), "Enter a valid positive number")
		assert.Equal(t, before, e.requestCount())

		err = settings.UpdateKwhRate(ctx, 0, testAdminPassword)
		assert.ErrorIs(t, err, apiclient.ErrValidation)
	})

	t.Run("Empty confirmation password is rejected locally", func(t *testing.T) {
		before := e.requestCount()
		err := settings.UpdateKwhRate(ctx, 28.00, "")
		assert.ErrorIs(t, err, apiclient.ErrValidation)
		assert.Equal(t, before, e.requestCount())
	})

	t.Run("Technician may not change the rate", func(t *testing.T) {
		_, techPassword := e.createUser(admin, "+254722222222", "Tom Tech", domain.RoleTechnician)
		techClient, techSession := e.loginAs("+254722222222", techPassword)
		techSettings := NewSettingsService(techClient, techSession)

		err := techSettings.UpdateKwhRate(ctx, 40.00, techPassword)
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	})
}
