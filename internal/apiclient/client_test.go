package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/api", 5*time.Second, opts...)
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"400 is a validation error", http.StatusBadRequest, ErrValidation},
		{"422 is a validation error", http.StatusUnprocessableEntity, ErrValidation},
		{"401 is an authentication error", http.StatusUnauthorized, ErrAuthentication},
		{"403 is an authorization error", http.StatusForbidden, ErrAuthorization},
		{"404 is not found", http.StatusNotFound, ErrNotFound},
		{"409 is a conflict", http.StatusConflict, ErrConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"error": "server says no"})
			})

			_, err := client.GetProfile(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			// The server's message surfaces verbatim.
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "server says no", apiErr.Message)
			assert.Equal(t, tc.status, apiErr.StatusCode)
		})
	}

	t.Run("5xx maps outside the sentinel set", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.GetProfile(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrAuthentication)
	})

	t.Run("Non-JSON failure body is carried as-is", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("plain text failure"))
		})
		_, err := client.GetProfile(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "plain text failure")
	})
}

func TestAuthFailureHook(t *testing.T) {
	t.Run("Fires on 401", func(t *testing.T) {
		fired := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
		}, WithAuthFailureHook(func() { fired++ }))

		_, err := client.GetProfile(context.Background())
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Equal(t, 1, fired)
		assert.True(t, IsAuthFailure(err))
	})

	t.Run("Does not fire on other failures", func(t *testing.T) {
		fired := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admins only"}`))
		}, WithAuthFailureHook(func() { fired++ }))

		_, err := client.GetProfile(context.Background())
		assert.ErrorIs(t, err, ErrAuthorization)
		assert.Zero(t, fired)
	})
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"u1","role":"ADMIN"}}`))
	}, WithTokenSource(staticTokens("tok-123")))

	_, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestCreateReadingMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/readings", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "m1", r.FormValue("meterId"))
		assert.Equal(t, "1000", r.FormValue("reading"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "evidence.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"reading":{"id":"r1","reading":1000},"bill":null}`))
	})

	resp, err := client.CreateReading(context.Background(), "m1", 1000, "evidence.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, resp.Reading.Reading)
	assert.Nil(t, resp.Bill)
}

func TestConnectionError(t *testing.T) {
	client := New("http://127.0.0.1:1/api", 500*time.Millisecond)
	_, err := client.GetProfile(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
