package port

import (
	"context"
	"time"

	"github.com/walletmine/admin-gateway/internal/core/domain"
)

// LoginOutcome is the structured answer of the staff login endpoint. A
// non-success outcome may carry the server's own throttle counters; those
// are authoritative over the locally maintained ones when present.
type LoginOutcome struct {
	Success        bool
	Token          string
	User           *domain.AuthUser
	Message        string
	Attempts       *int
	BlockRemaining *time.Duration
}

// VerifyOutcome is the structured answer of the token verification endpoint.
// NeedsRefresh signals that the token is close to expiry and should be
// rotated before further use.
type VerifyOutcome struct {
	Success      bool
	User         *domain.AuthUser
	NeedsRefresh bool
}

// StaffAPI is the remote REST boundary the session manager drives. A non-nil
// error means the call produced no structured answer (network failure,
// timeout, or an unparseable server response) and must be classified as a
// server fault, never as the operator's.
type StaffAPI interface {
	Login(ctx context.Context, username, password string) (*LoginOutcome, error)
	VerifyToken(ctx context.Context, token string) (*VerifyOutcome, error)
	RefreshToken(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}
