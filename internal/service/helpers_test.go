package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/session"
	"meterbill-dashboard/internal/stub"
)

const (
	testAdminPhone    = "+254700000000"
	testAdminPassword = "admin123"
	testDefaultRate   = 25.00
	testJWTSecret     = "test-secret-0123456789abcdef0123456789abcdef"
)

// env runs the real client stack against the in-memory reference backend.
// Individual paths can be forced to fail to exercise partial-failure
// behavior, and every request is counted.
type env struct {
	t        *testing.T
	backend  *stub.Server
	server   *httptest.Server
	requests atomic.Int64

	mu        sync.Mutex
	failPaths map[string]bool
}

func newEnv(t *testing.T) *env {
	t.Helper()

	backend, err := stub.NewServer(stub.Config{
		JWTSecret:      testJWTSecret,
		DefaultKwhRate: testDefaultRate,
		AdminPhone:     testAdminPhone,
		AdminPassword:  testAdminPassword,
	})
	require.NoError(t, err)

	e := &env{t: t, backend: backend, failPaths: make(map[string]bool)}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.requests.Add(1)
		e.mu.Lock()
		fail := e.failPaths[r.URL.Path]
		e.mu.Unlock()
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"simulated backend failure"}`))
			return
		}
		backend.ServeHTTP(w, r)
	}))
	t.Cleanup(e.server.Close)
	return e
}

// failPath makes requests to the given backend path fail with a 500.
func (e *env) failPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failPaths[path] = true
}

// requestCount returns how many requests reached the backend.
func (e *env) requestCount() int64 {
	return e.requests.Load()
}

// advanceClock moves the backend's clock forward by d.
func (e *env) advanceClock(d time.Duration) {
	base := time.Now().Add(d)
	e.backend.SetClock(func() time.Time { return base })
}

// loginAs builds a fresh client+session pair and logs in.
func (e *env) loginAs(phone, password string) (*apiclient.Client, *session.Manager) {
	e.t.Helper()
	sessions := session.NewManager(session.NewMemoryStore())
	client := apiclient.New(e.server.URL+"/api", 10*time.Second,
		apiclient.WithTokenSource(sessions),
		apiclient.WithAuthFailureHook(sessions.HandleAuthFailure),
	)
	sessions.AttachClient(client)
	_, err := sessions.Login(context.Background(), phone, password)
	require.NoError(e.t, err)
	return client, sessions
}

// adminSession logs in as the seeded admin.
func (e *env) adminSession() (*apiclient.Client, *session.Manager) {
	return e.loginAs(testAdminPhone, testAdminPassword)
}

// createUser creates a user via the admin API and returns it with its
// password.
func (e *env) createUser(admin *apiclient.Client, phone, name string, role domain.Role) (domain.User, string) {
	e.t.Helper()
	resp, err := admin.CreateUser(context.Background(), apiclient.CreateUserRequest{
		PhoneNumber: phone,
		Role:        role,
		Name:        name,
	})
	require.NoError(e.t, err)
	require.NotEmpty(e.t, resp.GeneratedPassword)
	return resp.User, resp.GeneratedPassword
}

// createMeter registers a meter owned by the landlord.
func (e *env) createMeter(admin *apiclient.Client, meterNumber, plot, landlordID string, kwhRate *float64) domain.Meter {
	e.t.Helper()
	meter, err := admin.CreateMeter(context.Background(), apiclient.CreateMeterRequest{
		MeterNumber: meterNumber,
		PlotNumber:  plot,
		LandlordID:  landlordID,
		KwhRate:     kwhRate,
	})
	require.NoError(e.t, err)
	return *meter
}
