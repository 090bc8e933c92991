package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	uuid "github.com/google/uuid"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
	"github.com/walletmine/admin-gateway/internal/infra/config"
)

const schemaVersion = "1.0"

// AuditPublisher implements port.AuditPublisher using Kafka. Events feed the
// platform operations log.
type AuditPublisher struct {
	producer *Producer
	appCfg   config.AppSettings
}

// NewAuditPublisher constructs a Kafka-backed audit publisher.
func NewAuditPublisher(producer *Producer, appCfg config.AppSettings) *AuditPublisher {
	return &AuditPublisher{producer: producer, appCfg: appCfg}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *AuditPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishLoginSucceeded publishes staff.auth.login_succeeded events.
func (p *AuditPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	payload := struct {
		UserID   string    `json:"user_id"`
		Username string    `json:"username"`
		Role     string    `json:"role"`
		At       time.Time `json:"at"`
	}{
		UserID:   event.UserID,
		Username: event.Username,
		Role:     string(event.Role),
		At:       event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login_succeeded", event.UserID, event.At, payload)
}

// PublishLoginFailed publishes staff.auth.login_failed events.
func (p *AuditPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		Username string    `json:"username"`
		Class    string    `json:"class"`
		Attempts int       `json:"attempts"`
		At       time.Time `json:"at"`
	}{
		Username: event.Username,
		Class:    string(event.Class),
		Attempts: event.Attempts,
		At:       event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login_failed", "", event.At, payload)
}

// PublishLockoutEngaged publishes staff.auth.lockout_engaged events.
func (p *AuditPublisher) PublishLockoutEngaged(ctx context.Context, event domain.LockoutEngagedEvent) error {
	payload := struct {
		Username     string    `json:"username"`
		Attempts     int       `json:"attempts"`
		BlockedUntil time.Time `json:"blocked_until"`
		At           time.Time `json:"at"`
	}{
		Username:     event.Username,
		Attempts:     event.Attempts,
		BlockedUntil: event.BlockedUntil.UTC(),
		At:           event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.lockout_engaged", "", event.At, payload)
}

// PublishSessionEnded publishes staff.auth.session_ended events.
func (p *AuditPublisher) PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error {
	payload := struct {
		UserID   string    `json:"user_id"`
		Username string    `json:"username"`
		Reason   string    `json:"reason"`
		At       time.Time `json:"at"`
	}{
		UserID:   event.UserID,
		Username: event.Username,
		Reason:   string(event.Reason),
		At:       event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.session_ended", event.UserID, event.At, payload)
}

var _ port.AuditPublisher = (*AuditPublisher)(nil)
