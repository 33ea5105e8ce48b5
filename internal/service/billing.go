package service

import (
	"context"
	"fmt"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
)

const maxPhotoBytes = 5 * 1024 * 1024

type billingService struct {
	client  *apiclient.Client
	session Session
}

// NewBillingService creates the billing workflow service.
func NewBillingService(client *apiclient.Client, session Session) BillingService {
	return &billingService{client: client, session: session}
}

// RecordReading validates the submission locally, raises the advisory
// previous-reading hint, and submits the reading with its photo evidence.
// Local validation covers only what the form must catch before the
// network: value range and the photo requirement. Consumption rules are
// the backend's.
func (s *billingService) RecordReading(ctx context.Context, input RecordReadingInput) (*RecordReadingResult, error) {
	if !s.session.Can(domain.ActionRecordReading) {
		return nil, ErrNotPermitted
	}
	if input.MeterID == "" {
		return nil, fmt.Errorf("meter is required: %w", apiclient.ErrValidation)
	}
	if input.Reading < 0 {
		return nil, fmt.Errorf("reading value must be a non-negative number: %w", apiclient.ErrValidation)
	}
	if input.Photo == nil || input.PhotoName == "" {
		return nil, fmt.Errorf("photo evidence is required: %w", apiclient.ErrValidation)
	}
	if input.PhotoSize > maxPhotoBytes {
		return nil, fmt.Errorf("photo must be 5MB or smaller: %w", apiclient.ErrValidation)
	}

	advisory := s.previousReadingAdvisory(ctx, input.MeterID, input.Reading)

	resp, err := s.client.CreateReading(ctx, input.MeterID, input.Reading, input.PhotoName, input.Photo)
	if err != nil {
		return nil, err
	}

	if resp.Bill != nil {
		logger.Info("Reading recorded, bill generated",
			"meter_id", input.MeterID,
			"bill_number", resp.Bill.BillNumber,
			"units", resp.Bill.UnitsConsumed,
			"total", resp.Bill.TotalAmount)
	} else {
		logger.Info("Reading recorded, no consumption billed", "meter_id", input.MeterID)
	}

	return &RecordReadingResult{
		Reading:  resp.Reading,
		Bill:     resp.Bill,
		Advisory: advisory,
	}, nil
}

// PreviousReadingHint exposes the advisory for form-time display, before
// the technician submits.
func (s *billingService) PreviousReadingHint(ctx context.Context, meterID string, value float64) string {
	return s.previousReadingAdvisory(ctx, meterID, value)
}

// previousReadingAdvisory compares the submitted value against the
// meter's most recent reading. Advisory only: a lookup failure or a lower
// value never stops the submission.
func (s *billingService) previousReadingAdvisory(ctx context.Context, meterID string, value float64) string {
	list, err := s.client.ListReadings(ctx, meterID, 1, 1)
	if err != nil {
		logger.Debug("Skipping previous-reading hint", "meter_id", meterID, "error", err)
		return ""
	}
	if len(list.Readings) == 0 {
		return ""
	}
	previous := list.Readings[0].Reading
	if value < previous {
		return fmt.Sprintf("Reading %.2f is below the last recorded reading %.2f for this meter", value, previous)
	}
	return ""
}

// MarkPaid transitions a bill to PAID. Admin-only; the workflow layer
// refuses before the network so the gate holds even if a UI wires the
// action for the wrong role. Paying an already-PAID bill surfaces the
// backend's conflict error untouched.
func (s *billingService) MarkPaid(ctx context.Context, billID string) (*domain.Bill, error) {
	if !s.session.Can(domain.ActionMarkBillPaid) {
		return nil, ErrNotPermitted
	}
	bill, err := s.client.MarkBillPaid(ctx, billID)
	if err != nil {
		return nil, err
	}
	logger.Info("Bill marked paid", "bill_id", billID, "bill_number", bill.BillNumber)
	return bill, nil
}

// UpdateOverdue runs the batch PENDING→OVERDUE reclassification and
// returns the transitioned count. Admin-only and idempotent: repeat calls
// on already-classified bills update zero records.
func (s *billingService) UpdateOverdue(ctx context.Context) (int, error) {
	if !s.session.Can(domain.ActionUpdateOverdue) {
		return 0, ErrNotPermitted
	}
	resp, err := s.client.UpdateOverdueBills(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("Overdue reclassification complete", "updated_count", resp.UpdatedCount)
	return resp.UpdatedCount, nil
}

// ListBills returns a page of bills for the current role.
func (s *billingService) ListBills(ctx context.Context, filter apiclient.BillFilter) (*apiclient.BillList, error) {
	if !s.session.Can(domain.ActionViewBills) {
		return nil, ErrNotPermitted
	}
	return s.client.ListBills(ctx, filter)
}
