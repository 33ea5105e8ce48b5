package service

import (
	"context"
	"fmt"
	"io"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
)

// ErrNotPermitted is returned when a role-gated action is attempted by a
// session lacking the role. It wraps the authorization taxonomy kind so
// errors.Is(err, apiclient.ErrAuthorization) holds. The backend enforces
// the same gate independently; this layer defends it so a misbuilt UI
// cannot even issue the call.
var ErrNotPermitted = fmt.Errorf("action not permitted for current role: %w", apiclient.ErrAuthorization)

// Session is the slice of the session manager the services depend on.
type Session interface {
	CurrentUser() *domain.User
	Can(action domain.Action) bool
}

// RecordReadingInput is the technician's submission for a new reading.
type RecordReadingInput struct {
	MeterID   string
	Reading   float64
	PhotoName string
	PhotoSize int64
	Photo     io.Reader
}

// RecordReadingResult carries the created reading, the generated bill when
// consumption was positive, and any advisory raised before submission.
type RecordReadingResult struct {
	Reading domain.MeterReading
	Bill    *domain.Bill
	// Advisory is a pre-submission hint (e.g. the value is below the last
	// recorded reading). It never blocks the submission; the backend owns
	// the authoritative validation.
	Advisory string
}

type BillingService interface {
	RecordReading(ctx context.Context, input RecordReadingInput) (*RecordReadingResult, error)
	// PreviousReadingHint returns the advisory raised for a candidate
	// value before submission, or empty when there is nothing to flag.
	PreviousReadingHint(ctx context.Context, meterID string, value float64) string
	MarkPaid(ctx context.Context, billID string) (*domain.Bill, error)
	UpdateOverdue(ctx context.Context) (int, error)
	ListBills(ctx context.Context, filter apiclient.BillFilter) (*apiclient.BillList, error)
}

type DashboardService interface {
	Load(ctx context.Context) (*Dashboard, error)
}

type SettingsService interface {
	GetKwhRate(ctx context.Context) (float64, error)
	UpdateKwhRate(ctx context.Context, value float64, password string) error
}
