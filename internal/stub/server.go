// Package stub is an in-memory reference implementation of the billing
// backend's REST surface. It serves local development and the contract
// tests; nothing here is intended for production use.
package stub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
)

const maxPhotoBytes = 5 * 1024 * 1024

type contextKey string

const userContextKey contextKey = "stub-user"

// Server implements the backend REST surface over the in-memory store.
type Server struct {
	store  *store
	router *mux.Router
	secret []byte

	clockMu sync.Mutex
	now     func() time.Time
}

// Config seeds the reference backend.
type Config struct {
	JWTSecret      string
	DefaultKwhRate float64
	AdminPhone     string
	AdminPassword  string
}

// NewServer builds the reference backend and seeds the admin account.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		store:  newStore(cfg.DefaultKwhRate),
		secret: []byte(cfg.JWTSecret),
		now:    time.Now,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.addUser(cfg.AdminPhone, "System Admin", domain.RoleAdmin, hash, s.Now()); err != nil {
		return nil, err
	}

	s.routes()
	return s, nil
}

// SetClock replaces the server's clock. Tests use it to move bills past
// their due dates.
func (s *Server) SetClock(now func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.now = now
}

// Now returns the server's current time.
func (s *Server) Now() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.now()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/auth/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/auth/users", s.requireRole(s.handleListUsers, domain.RoleAdmin)).Methods(http.MethodGet)
	authed.HandleFunc("/auth/users", s.requireRole(s.handleCreateUser, domain.RoleAdmin)).Methods(http.MethodPost)
	authed.HandleFunc("/auth/users/{id}", s.requireRole(s.handleUpdateUser, domain.RoleAdmin)).Methods(http.MethodPut)
	authed.HandleFunc("/auth/users/{id}", s.requireRole(s.handleDeleteUser, domain.RoleAdmin)).Methods(http.MethodDelete)
	authed.HandleFunc("/auth/users/{id}/reset-password", s.requireRole(s.handleResetPassword, domain.RoleAdmin)).Methods(http.MethodPost)

	authed.HandleFunc("/meters", s.handleListMeters).Methods(http.MethodGet)
	authed.HandleFunc("/meters", s.requireRole(s.handleCreateMeter, domain.RoleAdmin)).Methods(http.MethodPost)
	authed.HandleFunc("/meters/{id}", s.handleGetMeter).Methods(http.MethodGet)
	authed.HandleFunc("/meters/{id}", s.requireRole(s.handleUpdateMeter, domain.RoleAdmin)).Methods(http.MethodPut)

	authed.HandleFunc("/readings", s.handleListReadings).Methods(http.MethodGet)
	authed.HandleFunc("/readings", s.requireRole(s.handleCreateReading, domain.RoleAdmin, domain.RoleTechnician)).Methods(http.MethodPost)
	authed.HandleFunc("/readings/{id}", s.handleGetReading).Methods(http.MethodGet)

	authed.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	authed.HandleFunc("/bills/summary", s.handleBillingSummary).Methods(http.MethodGet)
	authed.HandleFunc("/bills/update-overdue", s.requireRole(s.handleUpdateOverdue, domain.RoleAdmin)).Methods(http.MethodPost)
	authed.HandleFunc("/bills/{id}", s.handleGetBill).Methods(http.MethodGet)
	authed.HandleFunc("/bills/{id}/pay", s.requireRole(s.handlePayBill, domain.RoleAdmin)).Methods(http.MethodPatch)

	authed.HandleFunc("/settings/kwh-rate", s.handleGetKwhRate).Methods(http.MethodGet)
	authed.HandleFunc("/settings/kwh-rate", s.requireRole(s.handleUpdateKwhRate, domain.RoleAdmin)).Methods(http.MethodPut)

	s.router = r
}

// issueToken signs a short-lived HS256 access token for the user.
func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"exp":  s.Now().Add(24 * time.Hour).Unix(),
		"iat":  s.Now().Unix(),
		"type": "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authMiddleware validates the bearer token and loads the caller.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		sub, err := claims.GetSubject()
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		user := s.store.userByID(sub)
		if user == nil {
			respondError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, &user.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole wraps a handler with a role check.
func (s *Server) requireRole(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !domain.HasRole(callerFrom(r), roles...) {
			respondError(w, http.StatusForbidden, "insufficient permissions for this action")
			return
		}
		next(w, r)
	}
}

func callerFrom(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// paginate slices a full result set into the requested page and its
// envelope.
func paginate[T any](items []T, page, limit int) ([]T, domain.Pagination) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	total := len(items)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], domain.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func queryInt(r *http.Request, key string, fallback int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// generatePassword produces a random secret for created or reset users.
func generatePassword() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
