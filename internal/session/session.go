package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
)

// ErrNotAuthenticated indicates an operation that requires a session was
// attempted without one.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager owns the client's single authenticated session: zero or one
// user plus the bearer credential. It is the apiclient.TokenSource, and
// its HandleAuthFailure is the global 401 hook, so any backend call that
// fails authentication tears the session down exactly once.
type Manager struct {
	store  Store
	client *apiclient.Client

	mu    sync.Mutex
	creds *Credentials

	// onTeardown, when set, is notified after the session is cleared by an
	// authentication failure (the "redirect to login" signal).
	onTeardown func()
}

// NewManager creates a session manager over the given credential store,
// restoring any persisted session.
func NewManager(store Store) *Manager {
	m := &Manager{store: store}
	creds, err := store.Load()
	if err == nil {
		m.creds = creds
	} else if !errors.Is(err, ErrNoCredentials) {
		logger.Warn("Failed to restore persisted session", "error", err)
	}
	return m
}

// AttachClient binds the API client used for login and profile refresh.
// Called once during wiring, after the client is constructed with this
// manager as its token source.
func (m *Manager) AttachClient(client *apiclient.Client) {
	m.client = client
}

// OnTeardown registers the callback notified when an authentication
// failure forces the session down.
func (m *Manager) OnTeardown(fn func()) {
	m.onTeardown = fn
}

// Token returns the current bearer credential, or empty when logged out.
// Implements apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return ""
	}
	return m.creds.Token
}

// CurrentUser returns the authenticated user, or nil when no session is
// active.
func (m *Manager) CurrentUser() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil
	}
	user := m.creds.User
	return &user
}

// HasRole reports whether the current user holds one of the allowed
// roles. This is a UX gate only; the backend re-checks every call.
func (m *Manager) HasRole(allowed ...domain.Role) bool {
	return domain.HasRole(m.CurrentUser(), allowed...)
}

// Can reports whether the current user may perform the action per the
// central capability table.
func (m *Manager) Can(action domain.Action) bool {
	user := m.CurrentUser()
	if user == nil {
		return false
	}
	return user.Role.Can(action)
}

// Login authenticates against the backend, establishes the session, and
// persists the credential for subsequent calls.
func (m *Manager) Login(ctx context.Context, phoneNumber, password string) (*domain.User, error) {
	resp, err := m.client.Login(ctx, phoneNumber, password)
	if err != nil {
		return nil, err
	}
	if !resp.User.Role.Valid() {
		// A role outside the closed set means a contract drift we must not
		// silently accept into the capability checks.
		return nil, errors.New("backend returned unknown role: " + string(resp.User.Role))
	}

	creds := &Credentials{Token: resp.Token, User: resp.User}
	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()

	if err := m.store.Save(creds); err != nil {
		logger.Warn("Failed to persist session credentials", "error", err)
	}
	if exp, ok := tokenExpiry(resp.Token); ok {
		logger.Debug("Session established", "user_id", resp.User.ID, "role", resp.User.Role, "token_expires", exp)
	} else {
		logger.Debug("Session established", "user_id", resp.User.ID, "role", resp.User.Role)
	}
	return m.CurrentUser(), nil
}

// Resume refreshes the restored user from the backend profile endpoint.
// A 401 here flows through the global teardown like any other call.
func (m *Manager) Resume(ctx context.Context) (*domain.User, error) {
	if m.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := m.client.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if m.creds != nil {
		m.creds.User = *user
	}
	m.mu.Unlock()
	return user, nil
}

// Logout clears the session unconditionally. It never fails: a broken
// credential store only costs a log line.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.creds = nil
	m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		logger.Warn("Failed to clear persisted credentials", "error", err)
	}
	logger.Info("Session cleared")
}

// HandleAuthFailure is the global 401 hook. It tears the session down at
// most once; further in-flight requests that also fail find the session
// already gone and do not re-trigger the teardown signal.
func (m *Manager) HandleAuthFailure() {
	m.mu.Lock()
	alreadyDown := m.creds == nil
	m.creds = nil
	m.mu.Unlock()
	if alreadyDown {
		return
	}
	if err := m.store.Clear(); err != nil {
		logger.Warn("Failed to clear persisted credentials", "error", err)
	}
	logger.Warn("Credential rejected by backend, session torn down")
	if m.onTeardown != nil {
		m.onTeardown()
	}
}

// tokenExpiry peeks at the credential's exp claim without verifying the
// signature. Diagnostics only: the token stays opaque to all decisions.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
