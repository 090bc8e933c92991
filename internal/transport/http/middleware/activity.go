package middleware

import (
	"github.com/gin-gonic/gin"
)

// ActivityTracker exposes the session manager behaviour this middleware needs.
type ActivityTracker interface {
	UpdateLastActive()
}

// Activity bumps the session's last-active timestamp on every request, the
// gateway-side counterpart of the dashboard's pointer and keyboard
// listeners. The tracker itself ignores the bump while unauthenticated.
func Activity(tracker ActivityTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tracker != nil {
			tracker.UpdateLastActive()
		}
		c.Next()
	}
}
