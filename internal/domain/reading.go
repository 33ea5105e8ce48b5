package domain

import "time"

// ReadingMeter is the meter projection embedded in reading responses.
type ReadingMeter struct {
	MeterNumber string        `json:"meterNumber"`
	PlotNumber  string        `json:"plotNumber"`
	Landlord    MeterLandlord `json:"landlord"`
}

// ReadingTechnician identifies who recorded a reading.
type ReadingTechnician struct {
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
}

// MeterReading is one entry in a meter's append-only reading ledger.
// Readings are immutable once created.
type MeterReading struct {
	ID              string            `json:"id"`
	Reading         float64           `json:"reading"`
	PreviousReading *float64          `json:"previousReading,omitempty"`
	UnitsConsumed   *float64          `json:"unitsConsumed,omitempty"`
	ReadingDate     time.Time         `json:"readingDate"`
	CreatedAt       time.Time         `json:"createdAt"`
	PhotoPath       string            `json:"photoPath"`
	Meter           ReadingMeter      `json:"meter"`
	Technician      ReadingTechnician `json:"technician"`
}

// Consumption returns the derived units consumed: reading minus previous
// reading when a previous reading exists, zero otherwise (a meter's first
// reading establishes the baseline and consumes nothing).
func (r *MeterReading) Consumption() float64 {
	if r.PreviousReading == nil {
		return 0
	}
	return r.Reading - *r.PreviousReading
}

// RecordedOn reports whether the reading was taken on the given calendar
// day in day's location. Used for the technician "today" dashboard count.
func (r *MeterReading) RecordedOn(day time.Time) bool {
	y1, m1, d1 := r.ReadingDate.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
