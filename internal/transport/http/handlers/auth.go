package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/transport/http/middleware"
	"github.com/walletmine/admin-gateway/internal/usecase"
)

// AuthHandler exposes the session endpoints consumed by the dashboard shell.
type AuthHandler struct {
	sessions *usecase.SessionManager
	metrics  *middleware.HTTPMetrics
	log      *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(sessions *usecase.SessionManager, metrics *middleware.HTTPMetrics, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, metrics: metrics, log: log}
}

// RegisterRoutes binds the auth routes. activity is applied to the routes
// that represent real operator interaction; the session snapshot is a status
// poll and must not keep an idle session alive.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, activity gin.HandlerFunc) {
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.GET("/session", h.session)
	if activity != nil {
		r.GET("/navigation", activity, h.navigation)
	} else {
		r.GET("/navigation", h.navigation)
	}
}

// statusForClass maps a failure classification onto an HTTP status. The
// dashboard keys its inline messages off the class field, not the status.
func statusForClass(class domain.FailureClass) int {
	switch class {
	case domain.FailureCredentials:
		return http.StatusUnauthorized
	case domain.FailurePermission:
		return http.StatusForbidden
	case domain.FailureRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid login payload"})
		return
	}

	result := h.sessions.Login(c.Request.Context(), req.Username, req.Password)

	if !result.Success {
		h.metrics.ObserveLogin(string(result.Class))
		c.JSON(statusForClass(result.Class), LoginResponse{
			Class:          string(result.Class),
			Message:        result.Message,
			BlockRemaining: int(result.BlockRemaining.Seconds()),
		})
		return
	}

	h.metrics.ObserveLogin("success")
	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		User:    NewUserResponse(*result.User),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		h.log.Error("logout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) session(c *gin.Context) {
	snapshot := h.sessions.Snapshot()

	resp := SessionResponse{Authenticated: snapshot.IsAuthenticated()}
	if snapshot.User != nil {
		resp.User = NewUserResponse(*snapshot.User)
		lastActive := snapshot.LastActiveAt
		lastVerified := snapshot.LastVerifiedAt
		resp.LastActiveAt = &lastActive
		resp.LastVerifiedAt = &lastVerified
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) navigation(c *gin.Context) {
	sections := h.sessions.VisibleSections()

	ids := make([]string, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, string(section))
	}

	c.JSON(http.StatusOK, NavigationResponse{Sections: ids})
}
