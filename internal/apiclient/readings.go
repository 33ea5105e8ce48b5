package apiclient

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"meterbill-dashboard/internal/domain"
)

// ReadingList is a page of readings plus its pagination envelope.
type ReadingList struct {
	Readings   []domain.MeterReading `json:"readings"`
	Pagination domain.Pagination     `json:"pagination"`
}

// CreateReadingResponse carries the created reading and, when consumption
// was positive, the bill generated from it.
type CreateReadingResponse struct {
	Message string              `json:"message"`
	Reading domain.MeterReading `json:"reading"`
	Bill    *domain.Bill        `json:"bill,omitempty"`
}

type readingEnvelope struct {
	Reading domain.MeterReading `json:"reading"`
}

// ListReadings returns a page of readings, optionally filtered to a meter.
func (c *Client) ListReadings(ctx context.Context, meterID string, page, limit int) (*ReadingList, error) {
	query := url.Values{}
	if meterID != "" {
		query.Set("meterId", meterID)
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp ReadingList
	if err := c.getJSON(ctx, "/readings", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetReading fetches a single reading by ID.
func (c *Client) GetReading(ctx context.Context, id string) (*domain.MeterReading, error) {
	var resp readingEnvelope
	if err := c.getJSON(ctx, "/readings/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Reading, nil
}

// CreateReading records a meter reading with its photo evidence via
// multipart form upload. The backend owns consumption validation and bill
// generation; a bill is returned only when consumption was positive.
func (c *Client) CreateReading(ctx context.Context, meterID string, reading float64, photoName string, photo io.Reader) (*CreateReadingResponse, error) {
	fields := map[string]string{
		"meterId": meterID,
		"reading": strconv.FormatFloat(reading, 'f', -1, 64),
	}
	var resp CreateReadingResponse
	if err := c.sendMultipart(ctx, "/readings", fields, "photo", photoName, photo, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
