package domain

import "time"

type BillStatus string

const (
	BillStatusPending BillStatus = "PENDING"
	BillStatusPaid    BillStatus = "PAID"
	BillStatusOverdue BillStatus = "OVERDUE"
)

// CanTransitionTo reports whether the status machine permits moving from s
// to next. PENDING may become PAID or OVERDUE, OVERDUE may become PAID,
// and PAID is terminal.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	switch s {
	case BillStatusPending:
		return next == BillStatusPaid || next == BillStatusOverdue
	case BillStatusOverdue:
		return next == BillStatusPaid
	}
	return false
}

// BillMeter is the meter projection embedded in bill responses.
type BillMeter struct {
	MeterNumber string `json:"meterNumber"`
	PlotNumber  string `json:"plotNumber"`
	Location    string `json:"location,omitempty"`
}

// BillLandlord identifies the landlord a bill is addressed to.
type BillLandlord struct {
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
}

// BillReading is the triggering reading embedded in bill responses.
type BillReading struct {
	Reading         float64           `json:"reading"`
	PreviousReading *float64          `json:"previousReading,omitempty"`
	ReadingDate     time.Time         `json:"readingDate"`
	Technician      ReadingTechnician `json:"technician"`
}

// Bill is an immutable historical record apart from Status and PaidDate.
// UnitsConsumed is fixed at creation from the triggering reading's derived
// consumption and never changes, even as later readings arrive.
type Bill struct {
	ID            string       `json:"id"`
	BillNumber    string       `json:"billNumber"`
	UnitsConsumed float64      `json:"unitsConsumed"`
	RatePerUnit   float64      `json:"ratePerUnit"`
	TotalAmount   float64      `json:"totalAmount"`
	BillDate      time.Time    `json:"billDate"`
	DueDate       time.Time    `json:"dueDate"`
	Status        BillStatus   `json:"status"`
	PaidDate      *time.Time   `json:"paidDate,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	Meter         BillMeter    `json:"meter"`
	Landlord      BillLandlord `json:"landlord"`
	Reading       BillReading  `json:"reading"`
}

// IsOverdueAt reports whether a still-pending bill's due date has passed.
// This is a derived value recomputed on every render, never persisted: a
// bill the server already classified OVERDUE, or one that is PAID, is not
// reported overdue by this check.
func IsOverdueAt(dueDate time.Time, status BillStatus, now time.Time) bool {
	return status == BillStatusPending && dueDate.Before(now)
}

// IsOverdue is IsOverdueAt against the current clock.
func (b *Bill) IsOverdue() bool {
	return IsOverdueAt(b.DueDate, b.Status, time.Now())
}

// BillingSummary is the server-computed billing aggregate. The client
// never mutates it.
type BillingSummary struct {
	TotalBills    int     `json:"totalBills"`
	PaidBills     int     `json:"paidBills"`
	PendingBills  int     `json:"pendingBills"`
	OverdueBills  int     `json:"overdueBills"`
	TotalAmount   float64 `json:"totalAmount"`
	PaidAmount    float64 `json:"paidAmount"`
	PendingAmount float64 `json:"pendingAmount"`
}

// Pagination is the list envelope the backend attaches to paginated
// responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
