package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"meterbill-dashboard/internal/logger"
)

// TokenSource supplies the bearer credential attached to authenticated
// requests. An empty token means no credential is attached.
type TokenSource interface {
	Token() string
}

// Client is a typed binding to the billing backend's REST surface.
// Endpoint methods are grouped by resource in the sibling files.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	// onAuthFailure is invoked once per 401 response, before the error is
	// returned to the caller. The session layer uses it for global teardown.
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a credential source for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthFailureHook registers the callback run on any 401 response.
func WithAuthFailureHook(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the backend at baseURL (e.g.
// "http://localhost:3001/api").
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorEnvelope is the backend's failure payload.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do executes one request and decodes a successful JSON response into out.
// Failure statuses are mapped onto the error taxonomy with the server's
// message carried verbatim; 401 additionally fires the auth-failure hook.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger.APICall(method, path, "request_id", requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.APIResult(method, path, 0, err, "request_id", requestID)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		logger.APIResult(method, path, resp.StatusCode, apiErr, "request_id", requestID)
		if resp.StatusCode == http.StatusUnauthorized && c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return apiErr
	}

	logger.APIResult(method, path, resp.StatusCode, nil, "request_id", requestID)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError extracts the server's error message from a failure response.
func decodeError(resp *http.Response) *APIError {
	var env errorEnvelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &env); err == nil {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return newAPIError(resp.StatusCode, msg)
	}
	return newAPIError(resp.StatusCode, strings.TrimSpace(string(data)))
}

// getJSON issues a GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// sendJSON issues a request with a JSON body and decodes the response.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, body, "application/json", out)
}

// sendMultipart issues a POST with multipart form fields plus one file part.
func (c *Client) sendMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType(), out)
}
