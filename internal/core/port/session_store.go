package port

import (
	"context"
	"errors"

	"github.com/walletmine/admin-gateway/internal/core/domain"
)

// ErrNoSession indicates the store holds no persisted session.
var ErrNoSession = errors.New("no persisted session")

// SessionStore persists the bearer token and identity as one unit so that a
// restart restores both or neither. Save must be atomic from the caller's
// perspective; a partial record must never be observable.
type SessionStore interface {
	Load(ctx context.Context) (*domain.PersistedSession, error)
	Save(ctx context.Context, session domain.PersistedSession) error
	Clear(ctx context.Context) error
}
