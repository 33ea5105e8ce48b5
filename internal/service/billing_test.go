package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
)

func readingInput(meterID string, value float64) RecordReadingInput {
	photo := "fake-jpeg-bytes"
	return RecordReadingInput{
		MeterID:   meterID,
		Reading:   value,
		PhotoName: "evidence.jpg",
		PhotoSize: int64(len(photo)),
		Photo:     strings.NewReader(photo),
	}
}

func TestRecordReading(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin, _ := e.adminSession()

	landlord, _ := e.createUser(admin, "+254711111111", "Jane Landlord", domain.RoleLandlord)
	_, techPassword := e.createUser(admin, "+254722222222", "Tom Tech", domain.RoleTechnician)
	meter := e.createMeter(admin, "MTR-001", "PLOT-7", landlord.ID, nil)

	techClient, techSession := e.loginAs("+254722222222", techPassword)
	billing := NewBillingService(techClient, techSession)

	t.Run("First reading establishes baseline, no bill", func(t *testing.T) {
		result, err := billing.RecordReading(ctx, readingInput(meter.ID, 800))
		require.NoError(t, err)
		assert.Nil(t, result.Bill)
		assert.Equal(t, 800.0, result.Reading.Reading)
		assert.Nil(t, result.Reading.PreviousReading)
	})

	t.Run("Positive consumption generates exactly one bill", func(t *testing.T) {
		result, err := billing.RecordReading(ctx, readingInput(meter.ID, 1000))
		require.NoError(t, err)
		require.NotNil(t, result.Bill)
		assert.Equal(t, 200.0, result.Bill.UnitsConsumed)
		assert.Equal(t, testDefaultRate, result.Bill.RatePerUnit)
		assert.InDelta(t, 5000.00, result.Bill.TotalAmount, 1e-9)
		assert.Equal(t, domain.BillStatusPending, result.Bill.Status)
		require.NotNil(t, result.Reading.PreviousReading)
		assert.Equal(t, 800.0, *result.Reading.PreviousReading)
	})

	t.Run("Zero consumption yields no bill", func(t *testing.T) {
		result, err := billing.RecordReading(ctx, readingInput(meter.ID, 1000))
		require.NoError(t, err)
		assert.Nil(t, result.Bill)
	})

	t.Run("Per-meter rate override wins over the default", func(t *testing.T) {
		override := 30.0
		overrideMeter := e.createMeter(admin, "MTR-002", "PLOT-8", landlord.ID, &override)
		_, err := billing.RecordReading(ctx, readingInput(overrideMeter.ID, 100))
		require.NoError(t, err)
		result, err := billing.RecordReading(ctx, readingInput(overrideMeter.ID, 150))
		require.NoError(t, err)
		require.NotNil(t, result.Bill)
		assert.Equal(t, override, result.Bill.RatePerUnit)
		assert.InDelta(t, 1500.00, result.Bill.TotalAmount, 1e-9)
	})

	t.Run("Negative value rejected locally", func(t *testing.T) {
		before := e.requestCount()
		_, err := billing.RecordReading(ctx, readingInput(meter.ID, -5))
		assert.ErrorIs(t, err, apiclient.ErrValidation)
		assert.Equal(t, before, e.requestCount())
	})

	t.Run("Missing photo rejected locally", func(t *testing.T) {
		input := readingInput(meter.ID, 1100)
		input.Photo = nil
		before := e.requestCount()
		_, err := billing.RecordReading(ctx, input)
		assert.ErrorIs(t, err, apiclient.ErrValidation)
		assert.Equal(t, before, e.requestCount())
	})

	t.Run("Oversized photo rejected locally", func(t *testing.T) {
		input := readingInput(meter.ID, 1100)
		input.PhotoSize = 6 * 1024 * 1024
		_, err := billing.RecordReading(ctx, input)
		assert.ErrorIs(t, err, apiclient.ErrValidation)
	})

	t.Run("Reading below previous is rejected by the backend", func(t *testing.T) {
		_, err := billing.RecordReading(ctx, readingInput(meter.ID, 500))
		assert.ErrorIs(t, err, apiclient.ErrValidation)
		assert.Contains(t, err.Error(), "previous reading")
	})

	t.Run("Previous-reading hint is advisory", func(t *testing.T) {
		hint := billing.PreviousReadingHint(ctx, meter.ID, 500)
		assert.Contains(t, hint, "below the last recorded reading")
		assert.Empty(t, billing.PreviousReadingHint(ctx, meter.ID, 1200))
	})

	t.Run("Landlord may not record readings", func(t *testing.T) {
		_, llPassword := e.createUser(admin, "+254733333333", "Second Landlord", domain.RoleLandlord)
		llClient, llSession := e.loginAs("+254733333333", llPassword)
		llBilling := NewBillingService(llClient, llSession)
		_, err := llBilling.RecordReading(ctx, readingInput(meter.ID, 1200))
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin, adminSession := e.adminSession()

	landlord, _ := e.createUser(admin, "+254711111111", "Jane Landlord", domain.RoleLandlord)
	_, techPassword := e.createUser(admin, "+254722222222", "Tom Tech", domain.RoleTechnician)
	meter := e.createMeter(admin, "MTR-001", "PLOT-7", landlord.ID, nil)

	techClient, techSession := e.loginAs("+254722222222", techPassword)
	techBilling := NewBillingService(techClient, techSession)

	_, err := techBilling.RecordReading(ctx, readingInput(meter.ID, 800))
	require.NoError(t, err)
	result, err := techBilling.RecordReading(ctx, readingInput(meter.ID, 1000))
	require.NoError(t, err)
	require.NotNil(t, result.Bill)
	billID := result.Bill.ID

	adminBilling := NewBillingService(admin, adminSession)

	t.Run("Technician is denied with an authorization error", func(t *testing.T) {
		_, err := techBilling.MarkPaid(ctx, billID)
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	})

	t.Run("Admin marks the bill paid", func(t *testing.T) {
		bill, err := adminBilling.MarkPaid(ctx, billID)
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusPaid, bill.Status)
		require.NotNil(t, bill.PaidDate)
	})

	t.Run("Paying twice is a surfaced conflict", func(t *testing.T) {
		_, err := adminBilling.MarkPaid(ctx, billID)
		assert.ErrorIs(t, err, apiclient.ErrConflict)
		assert.Contains(t, err.Error(), "already paid")
	})

	t.Run("Unknown bill is not found", func(t *testing.T) {
		_, err := adminBilling.MarkPaid(ctx, "no-such-bill")
		assert.ErrorIs(t, err, apiclient.ErrNotFound)
	})
}

func TestUpdateOverdue(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin, adminSession := e.adminSession()

	landlord, _ := e.createUser(admin, "+254711111111", "Jane Landlord", domain.RoleLandlord)
	_, techPassword := e.createUser(admin, "+254722222222", "Tom Tech", domain.RoleTechnician)
	meter := e.createMeter(admin, "MTR-001", "PLOT-7", landlord.ID, nil)

	techClient, techSession := e.loginAs("+254722222222", techPassword)
	techBilling := NewBillingService(techClient, techSession)
	adminBilling := NewBillingService(admin, adminSession)

	_, err := techBilling.RecordReading(ctx, readingInput(meter.ID, 800))
	require.NoError(t, err)
	result, err := techBilling.RecordReading(ctx, readingInput(meter.ID, 1000))
	require.NoError(t, err)
	require.NotNil(t, result.Bill)

	t.Run("Nothing past due yet", func(t *testing.T) {
		count, err := adminBilling.UpdateOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Past-due pending bill is reclassified once", func(t *testing.T) {
		e.advanceClock(31 * 24 * time.Hour)

		count, err := adminBilling.UpdateOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Idempotent: a second pass finds nothing left to move.
		count, err = adminBilling.UpdateOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Overdue bill can still be paid", func(t *testing.T) {
		bill, err := adminBilling.MarkPaid(ctx, result.Bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusPaid, bill.Status)
	})

	t.Run("Technician is denied with an authorization error", func(t *testing.T) {
		_, err := techBilling.UpdateOverdue(ctx)
		assert.ErrorIs(t, err, apiclient.ErrAuthorization)
	})
}
