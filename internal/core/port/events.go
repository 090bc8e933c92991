package port

import (
	"context"

	"github.com/walletmine/admin-gateway/internal/core/domain"
)

// AuditPublisher publishes auth lifecycle events toward the platform
// operations log. Publishing is best-effort: a failed publish must never
// block or fail the auth flow itself.
type AuditPublisher interface {
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishLockoutEngaged(ctx context.Context, event domain.LockoutEngagedEvent) error
	PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error
}
