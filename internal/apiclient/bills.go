package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"meterbill-dashboard/internal/domain"
)

// BillList is a page of bills plus its pagination envelope.
type BillList struct {
	Bills      []domain.Bill     `json:"bills"`
	Pagination domain.Pagination `json:"pagination"`
}

// BillFilter narrows ListBills. Zero values mean "no filter".
type BillFilter struct {
	Status     domain.BillStatus
	LandlordID string
	Page       int
	Limit      int
}

type billEnvelope struct {
	Message string      `json:"message"`
	Bill    domain.Bill `json:"bill"`
}

type summaryEnvelope struct {
	Summary domain.BillingSummary `json:"summary"`
}

// UpdateOverdueResponse reports how many bills were reclassified.
type UpdateOverdueResponse struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updatedCount"`
}

// ListBills returns a page of bills matching the filter.
func (c *Client) ListBills(ctx context.Context, filter BillFilter) (*BillList, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.LandlordID != "" {
		query.Set("landlordId", filter.LandlordID)
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp BillList
	if err := c.getJSON(ctx, "/bills", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBill fetches a single bill by ID.
func (c *Client) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	var resp billEnvelope
	if err := c.getJSON(ctx, "/bills/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Bill, nil
}

// MarkBillPaid transitions a PENDING or OVERDUE bill to PAID. Paying a
// bill that is already PAID is a conflict the backend reports and the
// caller must surface, not retry. Admin-only.
func (c *Client) MarkBillPaid(ctx context.Context, id string) (*domain.Bill, error) {
	var resp billEnvelope
	if err := c.sendJSON(ctx, http.MethodPatch, "/bills/"+id+"/pay", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Bill, nil
}

// GetBillingSummary fetches the server-computed billing aggregate, scoped
// by the backend to the caller's role.
func (c *Client) GetBillingSummary(ctx context.Context) (*domain.BillingSummary, error) {
	var resp summaryEnvelope
	if err := c.getJSON(ctx, "/bills/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}

// UpdateOverdueBills asks the backend to reclassify past-due PENDING bills
// as OVERDUE. Safe to call repeatedly; a second call with no new bills
// reports zero updates. Admin-only.
func (c *Client) UpdateOverdueBills(ctx context.Context) (*UpdateOverdueResponse, error) {
	var resp UpdateOverdueResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/bills/update-overdue", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
