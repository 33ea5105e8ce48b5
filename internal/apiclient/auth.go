package apiclient

import (
	"context"
	"net/http"

	"meterbill-dashboard/internal/domain"
)

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// AuthResponse is the successful login payload.
type AuthResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Token   string      `json:"token"`
}

// CreateUserRequest is the payload for POST /auth/users. Password may be
// empty, in which case the backend generates one and returns it.
type CreateUserRequest struct {
	PhoneNumber string      `json:"phoneNumber"`
	Password    string      `json:"password,omitempty"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name,omitempty"`
}

// CreateUserResponse carries the created user and, when the backend chose
// the password, the generated secret. The caller must surface it exactly
// once; it is never retrievable again.
type CreateUserResponse struct {
	Message           string      `json:"message"`
	User              domain.User `json:"user"`
	GeneratedPassword string      `json:"generatedPassword,omitempty"`
}

// UpdateUserRequest is the payload for PUT /auth/users/:id. Only name and
// role are mutable; phoneNumber is fixed at creation.
type UpdateUserRequest struct {
	Name string      `json:"name,omitempty"`
	Role domain.Role `json:"role,omitempty"`
}

// ResetPasswordResponse carries the newly generated password.
type ResetPasswordResponse struct {
	Message     string      `json:"message"`
	NewPassword string      `json:"newPassword"`
	User        domain.User `json:"user"`
}

type userEnvelope struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type usersEnvelope struct {
	Users []domain.User `json:"users"`
}

// Login exchanges credentials for a session token and user.
func (c *Client) Login(ctx context.Context, phoneNumber, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.sendJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{PhoneNumber: phoneNumber, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile fetches the authenticated user, used to resume a session.
func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var resp userEnvelope
	if err := c.getJSON(ctx, "/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers returns all users. Admin-only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp usersEnvelope
	if err := c.getJSON(ctx, "/auth/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser creates a user. Admin-only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	var resp CreateUserResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUser updates a user's name and/or role. Admin-only.
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*domain.User, error) {
	var resp userEnvelope
	if err := c.sendJSON(ctx, http.MethodPut, "/auth/users/"+userID, req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser deletes a user. Cascading effects on dependent meters,
// readings and bills are server-owned. Admin-only.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/auth/users/"+userID, nil, nil)
}

// ResetUserPassword generates and returns a new password for the user.
// Admin-only.
func (c *Client) ResetUserPassword(ctx context.Context, userID string) (*ResetPasswordResponse, error) {
	var resp ResetPasswordResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/users/"+userID+"/reset-password", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
