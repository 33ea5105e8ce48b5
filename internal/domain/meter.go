package domain

import "time"

// MeterLandlord is the landlord projection embedded in meter responses.
type MeterLandlord struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name,omitempty"`
	Role        Role   `json:"role,omitempty"`
}

// MeterCounts carries the association counts the backend attaches to meters.
type MeterCounts struct {
	Readings int `json:"readings"`
	Bills    int `json:"bills"`
}

// Meter is an installed electricity meter. MeterNumber and the owning
// landlord are immutable after creation; KwhRate, when set, overrides the
// global default rate for bills generated against this meter.
type Meter struct {
	ID          string        `json:"id"`
	MeterNumber string        `json:"meterNumber"`
	PlotNumber  string        `json:"plotNumber"`
	Coordinates string        `json:"coordinates,omitempty"`
	Location    string        `json:"location,omitempty"`
	KwhRate     *float64      `json:"kwhRate,omitempty"`
	IsActive    bool          `json:"isActive"`
	CreatedAt   time.Time     `json:"createdAt"`
	Landlord    MeterLandlord `json:"landlord"`
	Counts      *MeterCounts  `json:"_count,omitempty"`
}
