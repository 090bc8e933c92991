package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly audit publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishLoginSucceeded logs auth.login_succeeded events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"username": event.Username,
		"role":     event.Role,
	}
	p.logEvent("auth.login_succeeded", event.At, payload)
	return nil
}

// PublishLoginFailed logs auth.login_failed events.
func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	payload := map[string]any{
		"username": event.Username,
		"class":    event.Class,
		"attempts": event.Attempts,
	}
	p.logEvent("auth.login_failed", event.At, payload)
	return nil
}

// PublishLockoutEngaged logs auth.lockout_engaged events.
func (p *StubPublisher) PublishLockoutEngaged(_ context.Context, event domain.LockoutEngagedEvent) error {
	payload := map[string]any{
		"username":      event.Username,
		"attempts":      event.Attempts,
		"blocked_until": event.BlockedUntil,
	}
	p.logEvent("auth.lockout_engaged", event.At, payload)
	return nil
}

// PublishSessionEnded logs auth.session_ended events.
func (p *StubPublisher) PublishSessionEnded(_ context.Context, event domain.SessionEndedEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"username": event.Username,
		"reason":   event.Reason,
	}
	p.logEvent("auth.session_ended", event.At, payload)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
