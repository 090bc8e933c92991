package handlers

import (
	"time"

	"github.com/walletmine/admin-gateway/internal/core/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse reports a classified login outcome to the dashboard.
type LoginResponse struct {
	Success        bool          `json:"success"`
	Class          string        `json:"class,omitempty"`
	Message        string        `json:"message,omitempty"`
	BlockRemaining int           `json:"block_remaining,omitempty"`
	User           *UserResponse `json:"user,omitempty"`
}

// UserResponse is the identity view exposed to the dashboard.
type UserResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
}

// NewUserResponse maps a domain identity onto the API view.
func NewUserResponse(user domain.AuthUser) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Role:        string(user.Role),
		Permissions: user.Permissions,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}
}

// SessionResponse is the read-only session snapshot for the dashboard shell.
type SessionResponse struct {
	Authenticated  bool          `json:"authenticated"`
	User           *UserResponse `json:"user,omitempty"`
	LastActiveAt   *time.Time    `json:"last_active_at,omitempty"`
	LastVerifiedAt *time.Time    `json:"last_verified_at,omitempty"`
}

// NavigationResponse lists the sidebar sections visible to the operator.
type NavigationResponse struct {
	Sections []string `json:"sections"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
