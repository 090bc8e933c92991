// Package staffapi implements the HTTP client for the remote staff REST API.
package staffapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
	"github.com/walletmine/admin-gateway/internal/infra/config"
	"github.com/walletmine/admin-gateway/internal/infra/logger"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned by authorized calls when the server rejects
// the token even after a refresh attempt.
var ErrUnauthorized = errors.New("staff api: unauthorized")

// Client talks to the staff API. A nil-error return always carries a
// structured outcome; a non-nil error means no structured answer was
// obtained (network fault, timeout, or garbage body).
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	// onRotate is invoked whenever an authorized call transparently swapped
	// the token for a refreshed one, so the owner can re-persist it.
	onRotate func(token string)
}

// Option configures optional Client behaviour.
type Option func(*Client)

// WithTokenRotationHook registers a callback fired after a transparent
// token refresh.
func WithTokenRotationHook(hook func(token string)) Option {
	return func(c *Client) {
		c.onRotate = hook
	}
}

// WithHTTPClient substitutes the underlying HTTP client. Intended for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient constructs a staff API client from configuration.
func NewClient(cfg config.StaffAPISettings, log *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("staff api base url is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

type userPayload struct {
	ID          string   `json:"id"`
	PlatformID  string   `json:"platform_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	CanLogin    bool     `json:"can_login"`
	Permissions []string `json:"permissions"`
	DisplayName string   `json:"display_name"`
	AvatarURL   string   `json:"avatar_url"`
}

func (p *userPayload) toDomain() *domain.AuthUser {
	if p == nil {
		return nil
	}
	return &domain.AuthUser{
		ID:          p.ID,
		PlatformID:  p.PlatformID,
		Username:    p.Username,
		Role:        domain.ParseRole(p.Role),
		CanLogin:    p.CanLogin,
		Permissions: p.Permissions,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}

type loginPayload struct {
	Success        bool         `json:"success"`
	Token          string       `json:"token"`
	User           *userPayload `json:"user"`
	Message        string       `json:"message"`
	Attempts       *int         `json:"attempts"`
	BlockRemaining *int         `json:"block_remaining"`
}

type verifyPayload struct {
	Success      bool         `json:"success"`
	User         *userPayload `json:"user"`
	NeedsRefresh bool         `json:"needs_refresh"`
}

type refreshPayload struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Login authenticates the supplied credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*port.LoginOutcome, error) {
	body, _, err := c.post(ctx, "/staff/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var payload loginPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	outcome := &port.LoginOutcome{
		Success:  payload.Success,
		Token:    payload.Token,
		User:     payload.User.toDomain(),
		Message:  payload.Message,
		Attempts: payload.Attempts,
	}
	if payload.BlockRemaining != nil {
		remaining := time.Duration(*payload.BlockRemaining) * time.Second
		outcome.BlockRemaining = &remaining
	}

	return outcome, nil
}

// VerifyToken checks whether the token is still accepted by the server. A
// rejection is a structured outcome, not an error.
func (c *Client) VerifyToken(ctx context.Context, token string) (*port.VerifyOutcome, error) {
	body, status, err := c.post(ctx, "/staff/verify-token", token, map[string]string{"token": token})
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return &port.VerifyOutcome{Success: false}, nil
	}

	var payload verifyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	return &port.VerifyOutcome{
		Success:      payload.Success,
		User:         payload.User.toDomain(),
		NeedsRefresh: payload.NeedsRefresh,
	}, nil
}

// RefreshToken exchanges the token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	body, _, err := c.post(ctx, "/staff/refresh-token", token, map[string]string{"token": token})
	if err != nil {
		return "", err
	}

	var payload refreshPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if !payload.Success || payload.Token == "" {
		return "", errors.New("refresh rejected")
	}

	return payload.Token, nil
}

// Logout notifies the server the session ended. Uses the authorized path so
// a stale-but-refreshable token still reaches the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.AuthorizedPost(ctx, "/staff/logout", token, map[string]string{"token": token})
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

// AuthorizedPost performs a token-bearing POST with the refresh-and-retry
// interceptor: a 401 answer triggers exactly one token refresh followed by
// one retry of the original request. The retry is flagged explicitly so the
// loop cannot recurse.
func (c *Client) AuthorizedPost(ctx context.Context, path, token string, payload any) ([]byte, error) {
	return c.authorizedPost(ctx, path, token, payload, false)
}

func (c *Client) authorizedPost(ctx context.Context, path, token string, payload any, retried bool) ([]byte, error) {
	body, status, err := c.post(ctx, path, token, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusUnauthorized {
		return body, nil
	}
	if retried {
		return nil, ErrUnauthorized
	}

	refreshed, err := c.RefreshToken(ctx, token)
	if err != nil {
		c.log.Warn("token refresh after 401 failed",
			zap.String("path", path),
			zap.String("token", logger.MaskToken(token)),
			zap.Error(err),
		)
		return nil, ErrUnauthorized
	}

	if c.onRotate != nil {
		c.onRotate(refreshed)
	}

	return c.authorizedPost(ctx, path, refreshed, payload, true)
}

// post performs one JSON POST and returns the raw body and status. Any
// failure to reach the server or read its answer surfaces as an error; HTTP
// error statuses with readable bodies do not.
func (c *Client) post(ctx context.Context, path, token string, payload any) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("staff api %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

var _ port.StaffAPI = (*Client)(nil)
