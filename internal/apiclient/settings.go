package apiclient

import (
	"context"
	"net/http"
	"strconv"
)

// KwhRateResponse carries the global tariff setting. Value is transported
// as a string by the backend's settings store.
type KwhRateResponse struct {
	Message string `json:"message,omitempty"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

type updateKwhRateRequest struct {
	Value    float64 `json:"value"`
	Password string  `json:"password"`
}

// GetKwhRate fetches the global default rate per unit. Available to any
// authenticated role.
func (c *Client) GetKwhRate(ctx context.Context) (float64, error) {
	var resp KwhRateResponse
	if err := c.getJSON(ctx, "/settings/kwh-rate", nil, &resp); err != nil {
		return 0, err
	}
	rate, err := strconv.ParseFloat(resp.Value, 64)
	if err != nil {
		return 0, err
	}
	return rate, nil
}

// UpdateKwhRate sets the global default rate. Admin-only, and the admin's
// password must be re-supplied as a step-up confirmation.
func (c *Client) UpdateKwhRate(ctx context.Context, value float64, password string) error {
	return c.sendJSON(ctx, http.MethodPut, "/settings/kwh-rate", updateKwhRateRequest{Value: value, Password: password}, nil)
}
