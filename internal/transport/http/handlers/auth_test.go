package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
	"github.com/walletmine/admin-gateway/internal/infra/config"
	"github.com/walletmine/admin-gateway/internal/usecase"
)

type scriptedAPI struct {
	loginFn func(username, password string) (*port.LoginOutcome, error)
}

func (s *scriptedAPI) Login(_ context.Context, username, password string) (*port.LoginOutcome, error) {
	return s.loginFn(username, password)
}

func (s *scriptedAPI) VerifyToken(context.Context, string) (*port.VerifyOutcome, error) {
	return &port.VerifyOutcome{Success: true}, nil
}

func (s *scriptedAPI) RefreshToken(context.Context, string) (string, error) {
	return "", nil
}

func (s *scriptedAPI) Logout(context.Context, string) error {
	return nil
}

type memoryStore struct {
	record *domain.PersistedSession
}

func (m *memoryStore) Load(context.Context) (*domain.PersistedSession, error) {
	if m.record == nil {
		return nil, port.ErrNoSession
	}
	return m.record, nil
}

func (m *memoryStore) Save(_ context.Context, session domain.PersistedSession) error {
	m.record = &session
	return nil
}

func (m *memoryStore) Clear(context.Context) error {
	m.record = nil
	return nil
}

func newTestRouter(t *testing.T, api port.StaffAPI) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Lockout: config.LockoutSettings{MaxAttempts: 5, BlockDuration: 15 * time.Minute},
		Session: config.SessionSettings{
			InactivityTimeout: 30 * time.Minute,
			VerifyInterval:    5 * time.Minute,
			SweepInterval:     time.Minute,
		},
	}
	sessions, err := usecase.NewSessionManager(cfg, api, &memoryStore{}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	r := gin.New()
	handler := NewAuthHandler(sessions, nil, zap.NewNop())
	handler.RegisterRoutes(r.Group("/api/v1/auth"), nil)
	return r
}

func doLogin(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginEndpointSuccess(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			user := domain.AuthUser{ID: "u-1", Username: "carol", Role: domain.RoleManager, CanLogin: true}
			return &port.LoginOutcome{Success: true, Token: "tok-1", User: &user}, nil
		},
	}
	r := newTestRouter(t, api)

	w := doLogin(t, r, `{"username":"carol","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.User == nil || resp.User.Role != "manager" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestLoginEndpointStatusPerClass(t *testing.T) {
	cases := []struct {
		name       string
		outcome    port.LoginOutcome
		wantStatus int
		wantClass  string
	}{
		{
			name:       "credentials",
			outcome:    port.LoginOutcome{Success: false, Message: "Invalid credentials"},
			wantStatus: http.StatusUnauthorized,
			wantClass:  "credentials",
		},
		{
			name: "permission",
			outcome: port.LoginOutcome{
				Success: true,
				Token:   "tok-x",
				User:    &domain.AuthUser{ID: "u-2", Role: domain.RoleSupport, CanLogin: false},
			},
			wantStatus: http.StatusForbidden,
			wantClass:  "permission",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &scriptedAPI{
				loginFn: func(string, string) (*port.LoginOutcome, error) {
					outcome := tc.outcome
					return &outcome, nil
				},
			}
			r := newTestRouter(t, api)

			w := doLogin(t, r, `{"username":"bob","password":"pass"}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tc.wantStatus, w.Body.String())
			}

			var resp LoginResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Class != tc.wantClass {
				t.Fatalf("class = %q, want %q", resp.Class, tc.wantClass)
			}
		})
	}
}

func TestLoginEndpointRateLimitAfterLockout(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			return &port.LoginOutcome{Success: false, Message: "Invalid credentials"}, nil
		},
	}
	r := newTestRouter(t, api)

	var w *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		w = doLogin(t, r, `{"username":"alice","password":"wrongpass"}`)
	}
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("fifth attempt status = %d, want 429", w.Code)
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Class != "rate_limit" {
		t.Fatalf("class = %q, want rate_limit", resp.Class)
	}
	if resp.BlockRemaining <= 0 {
		t.Fatalf("block_remaining = %d, want positive", resp.BlockRemaining)
	}
}

func TestLoginEndpointRejectsMalformedPayload(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			t.Fatal("login must not reach the manager on a bad payload")
			return nil, nil
		},
	}
	r := newTestRouter(t, api)

	w := doLogin(t, r, `{"username":"alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSessionEndpointReflectsState(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			user := domain.AuthUser{ID: "u-1", Username: "carol", Role: domain.RoleManager, CanLogin: true}
			return &port.LoginOutcome{Success: true, Token: "tok-1", User: &user}, nil
		},
	}
	r := newTestRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Authenticated {
		t.Fatal("session should start unauthenticated")
	}

	doLogin(t, r, `{"username":"carol","password":"secret"}`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || resp.User.Username != "carol" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestLogoutEndpointClearsSession(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			user := domain.AuthUser{ID: "u-1", Username: "carol", Role: domain.RoleManager, CanLogin: true}
			return &port.LoginOutcome{Success: true, Token: "tok-1", User: &user}, nil
		},
	}
	r := newTestRouter(t, api)
	doLogin(t, r, `{"username":"carol","password":"secret"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil))
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Authenticated {
		t.Fatal("session should be cleared after logout")
	}
}

func TestNavigationEndpointPerRole(t *testing.T) {
	api := &scriptedAPI{
		loginFn: func(string, string) (*port.LoginOutcome, error) {
			user := domain.AuthUser{ID: "u-1", Username: "sam", Role: domain.RoleSupport, CanLogin: true}
			return &port.LoginOutcome{Success: true, Token: "tok-1", User: &user}, nil
		},
	}
	r := newTestRouter(t, api)
	doLogin(t, r, `{"username":"sam","password":"secret"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/navigation", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp NavigationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []string{"mainContent", "contentSeparator", "techSupport"}
	if len(resp.Sections) != len(want) {
		t.Fatalf("sections = %v, want %v", resp.Sections, want)
	}
	for i := range want {
		if resp.Sections[i] != want[i] {
			t.Fatalf("sections = %v, want %v", resp.Sections, want)
		}
	}
}
