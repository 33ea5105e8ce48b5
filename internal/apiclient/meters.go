package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"meterbill-dashboard/internal/domain"
)

// CreateMeterRequest is the payload for POST /meters. KwhRate, when set,
// overrides the global default rate for this meter's bills.
type CreateMeterRequest struct {
	MeterNumber string   `json:"meterNumber"`
	PlotNumber  string   `json:"plotNumber"`
	LandlordID  string   `json:"landlordId"`
	Coordinates string   `json:"coordinates,omitempty"`
	Location    string   `json:"location,omitempty"`
	KwhRate     *float64 `json:"kwhRate,omitempty"`
}

// UpdateMeterRequest is the payload for PUT /meters/:id. MeterNumber and
// the owning landlord are immutable and intentionally absent.
type UpdateMeterRequest struct {
	PlotNumber  string   `json:"plotNumber,omitempty"`
	Coordinates string   `json:"coordinates,omitempty"`
	Location    string   `json:"location,omitempty"`
	KwhRate     *float64 `json:"kwhRate,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type meterEnvelope struct {
	Message string       `json:"message"`
	Meter   domain.Meter `json:"meter"`
}

type metersEnvelope struct {
	Meters []domain.Meter `json:"meters"`
}

// ListMeters returns meters, optionally filtered to one landlord.
func (c *Client) ListMeters(ctx context.Context, landlordID string) ([]domain.Meter, error) {
	query := url.Values{}
	if landlordID != "" {
		query.Set("landlordId", landlordID)
	}
	var resp metersEnvelope
	if err := c.getJSON(ctx, "/meters", query, &resp); err != nil {
		return nil, err
	}
	return resp.Meters, nil
}

// GetMeter fetches a single meter by ID.
func (c *Client) GetMeter(ctx context.Context, id string) (*domain.Meter, error) {
	var resp meterEnvelope
	if err := c.getJSON(ctx, "/meters/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Meter, nil
}

// CreateMeter registers a meter. Admin-only.
func (c *Client) CreateMeter(ctx context.Context, req CreateMeterRequest) (*domain.Meter, error) {
	var resp meterEnvelope
	if err := c.sendJSON(ctx, http.MethodPost, "/meters", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Meter, nil
}

// UpdateMeter updates a meter's mutable fields. Admin-only.
func (c *Client) UpdateMeter(ctx context.Context, id string, req UpdateMeterRequest) (*domain.Meter, error) {
	var resp meterEnvelope
	if err := c.sendJSON(ctx, http.MethodPut, "/meters/"+id, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Meter, nil
}
