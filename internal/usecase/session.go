package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walletmine/admin-gateway/internal/core/domain"
	"github.com/walletmine/admin-gateway/internal/core/port"
	"github.com/walletmine/admin-gateway/internal/infra/config"
)

const (
	defaultMaxAttempts       = 5
	defaultBlockDuration     = 15 * time.Minute
	defaultInactivityTimeout = 30 * time.Minute
	defaultVerifyInterval    = 5 * time.Minute
	defaultSweepInterval     = time.Minute
)

const (
	msgMissingCredentials = "Username and password are required"
	msgBadCredentials     = "Invalid username or password"
	msgNoDashboardAccess  = "Your account is not allowed to use the dashboard"
	msgTooManyAttempts    = "Too many failed attempts, try again later"
	msgServerError        = "The server could not be reached, try again"
)

// SessionManager owns the operator session: login with lockout throttling,
// logout, restore across restarts, activity tracking, and the background
// expiry sweeps. All reads and writes of the session go through it.
type SessionManager struct {
	cfg   *config.AppConfig
	api   port.StaffAPI
	store port.SessionStore
	audit port.AuditPublisher
	log   *zap.Logger
	now   port.Clock

	mu       sync.Mutex
	session  domain.Session
	attempts domain.LoginAttemptState

	stopOnce sync.Once
	done     chan struct{}
}

// NewSessionManager constructs a SessionManager instance.
func NewSessionManager(cfg *config.AppConfig, api port.StaffAPI, store port.SessionStore, audit port.AuditPublisher, log *zap.Logger) (*SessionManager, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if api == nil {
		return nil, errors.New("staff api is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SessionManager{
		cfg:   cfg,
		api:   api,
		store: store,
		audit: audit,
		log:   log,
		now:   time.Now,
		done:  make(chan struct{}),
	}, nil
}

// WithClock substitutes the time source. Intended for tests.
func (m *SessionManager) WithClock(clock port.Clock) *SessionManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// Snapshot returns a copy of the current session for read-only consumption.
func (m *SessionManager) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.session
	if m.session.User != nil {
		userCopy := *m.session.User
		snapshot.User = &userCopy
	}
	return snapshot
}

// AttemptState returns a copy of the current throttle counters.
func (m *SessionManager) AttemptState() domain.LoginAttemptState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Login authenticates the operator against the staff API. Failures are
// returned as classified results, never as errors: the caller renders them,
// it does not interpret them.
func (m *SessionManager) Login(ctx context.Context, username, password string) domain.LoginResult {
	now := m.now()

	m.mu.Lock()
	m.attempts.ExpireBlock(now)
	if remaining := m.attempts.Remaining(now); remaining > 0 {
		m.mu.Unlock()
		result := domain.LoginFailure(domain.FailureRateLimit, msgTooManyAttempts)
		result.BlockRemaining = remaining
		return result
	}
	m.mu.Unlock()

	if username == "" || password == "" {
		return domain.LoginFailure(domain.FailureCredentials, msgMissingCredentials)
	}

	outcome, err := m.api.Login(ctx, username, password)
	if err != nil {
		// Transport and unstructured server faults are not the operator's
		// doing and never touch the attempt counter.
		m.log.Warn("login request failed", zap.Error(err))
		return domain.LoginFailure(domain.FailureServer, msgServerError)
	}

	if !outcome.Success {
		return m.registerFailedLogin(ctx, username, outcome)
	}

	user := outcome.User
	if user == nil || outcome.Token == "" {
		m.log.Error("login response missing token or user")
		return domain.LoginFailure(domain.FailureServer, msgServerError)
	}

	if !user.MayUseDashboard() {
		// Authorization denial, not a throttle: the counter stays put and
		// nothing is persisted.
		m.publishLoginFailed(ctx, username, domain.FailurePermission)
		return domain.LoginFailure(domain.FailurePermission, msgNoDashboardAccess)
	}

	now = m.now()

	m.mu.Lock()
	m.session.Establish(*user, outcome.Token, now)
	m.attempts.Reset()
	m.mu.Unlock()

	if err := m.store.Save(ctx, domain.PersistedSession{
		Token:          outcome.Token,
		User:           *user,
		SavedAt:        now,
		LastVerifiedAt: now,
	}); err != nil {
		// The in-memory session stays valid; persistence only costs the
		// operator a re-login after a restart.
		m.log.Error("persist session", zap.Error(err))
	}

	m.publishLoginSucceeded(ctx, *user, now)

	return domain.LoginSuccess(*user)
}

func (m *SessionManager) registerFailedLogin(ctx context.Context, username string, outcome *port.LoginOutcome) domain.LoginResult {
	now := m.now()

	maxAttempts := m.cfg.Lockout.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	blockFor := m.cfg.Lockout.BlockDuration
	if blockFor <= 0 {
		blockFor = defaultBlockDuration
	}

	m.mu.Lock()
	tripped := m.attempts.RegisterFailure(now, maxAttempts, blockFor)
	m.attempts.ApplyServer(outcome.Attempts, outcome.BlockRemaining, now)
	blocked := m.attempts.Blocked
	remaining := m.attempts.Remaining(now)
	attempts := m.attempts.Attempts
	blockedUntil := m.attempts.BlockedUntil
	m.mu.Unlock()

	if tripped || blocked {
		if tripped {
			m.publishLockoutEngaged(ctx, username, attempts, blockedUntil, now)
		}
		result := domain.LoginFailure(domain.FailureRateLimit, msgTooManyAttempts)
		result.BlockRemaining = remaining
		return result
	}

	m.publishLoginFailed(ctx, username, domain.FailureCredentials)

	message := outcome.Message
	if message == "" {
		message = msgBadCredentials
	}
	return domain.LoginFailure(domain.FailureCredentials, message)
}

// Logout terminates the session: the staff API is notified best-effort, then
// the persisted record and the in-memory state are cleared together. Calling
// it while unauthenticated is a no-op.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.endSession(ctx, domain.SessionEndLogout)
}

func (m *SessionManager) endSession(ctx context.Context, reason domain.SessionEndReason) error {
	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return nil
	}
	token := m.session.Token
	user := *m.session.User
	m.session.Clear()
	m.mu.Unlock()

	// Server notification is best-effort; local logout already happened.
	if err := m.api.Logout(ctx, token); err != nil {
		m.log.Warn("notify logout", zap.Error(err))
	}

	m.publishSessionEnded(ctx, user, reason)

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// RestoreSession rehydrates the session from the persisted record. It is
// called once at startup, before any permission-gated surface is served. The
// persisted identity is trusted optimistically; a verification round-trip
// happens only when the record has not been verified recently.
func (m *SessionManager) RestoreSession(ctx context.Context) error {
	record, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, port.ErrNoSession) {
			return nil
		}
		return fmt.Errorf("load persisted session: %w", err)
	}
	if record.Token == "" {
		// A record without a token violates the session invariant; discard
		// it rather than restoring half a session.
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn("clear corrupt session record", zap.Error(err))
		}
		return nil
	}

	now := m.now()

	m.mu.Lock()
	m.session.Establish(record.User, record.Token, now)
	m.session.LastVerifiedAt = record.LastVerifiedAt
	m.mu.Unlock()

	verifyInterval := m.cfg.Session.VerifyInterval
	if verifyInterval <= 0 {
		verifyInterval = defaultVerifyInterval
	}
	if now.Sub(record.LastVerifiedAt) <= verifyInterval {
		return nil
	}

	return m.verifyToken(ctx)
}

// verifyToken asks the staff API whether the current token is still good,
// refreshing the identity on success and tearing the session down on a
// structured rejection. Transport faults keep the optimistic session; the
// next sweep retries.
func (m *SessionManager) verifyToken(ctx context.Context) error {
	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return nil
	}
	token := m.session.Token
	m.mu.Unlock()

	outcome, err := m.api.VerifyToken(ctx, token)
	if err != nil {
		m.log.Warn("verify token", zap.Error(err))
		return nil
	}

	if !outcome.Success {
		m.log.Info("session rejected by staff api")
		return m.endSession(ctx, domain.SessionEndRevoked)
	}

	if outcome.NeedsRefresh {
		refreshed, err := m.api.RefreshToken(ctx, token)
		if err != nil {
			m.log.Warn("refresh token", zap.Error(err))
		} else if refreshed != "" {
			token = refreshed
		}
	}

	now := m.now()

	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return nil
	}
	if outcome.User != nil {
		userCopy := *outcome.User
		m.session.User = &userCopy
	}
	m.session.Token = token
	m.session.LastVerifiedAt = now
	user := *m.session.User
	m.mu.Unlock()

	if err := m.store.Save(ctx, domain.PersistedSession{
		Token:          token,
		User:           user,
		SavedAt:        now,
		LastVerifiedAt: now,
	}); err != nil {
		m.log.Error("persist verified session", zap.Error(err))
	}
	return nil
}

// AdoptToken swaps in a token the REST boundary rotated mid-flight and
// re-persists the session so the fresh token survives a restart. No-op while
// unauthenticated.
func (m *SessionManager) AdoptToken(ctx context.Context, token string) {
	if token == "" {
		return
	}

	now := m.now()

	m.mu.Lock()
	if !m.session.IsAuthenticated() {
		m.mu.Unlock()
		return
	}
	m.session.Token = token
	user := *m.session.User
	lastVerified := m.session.LastVerifiedAt
	m.mu.Unlock()

	if err := m.store.Save(ctx, domain.PersistedSession{
		Token:          token,
		User:           user,
		SavedAt:        now,
		LastVerifiedAt: lastVerified,
	}); err != nil {
		m.log.Error("persist rotated token", zap.Error(err))
	}
}

// UpdateLastActive stamps operator activity. No-op while unauthenticated.
func (m *SessionManager) UpdateLastActive() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.IsAuthenticated() {
		m.session.LastActiveAt = now
	}
}

// VisibleSections returns the sidebar sections the current operator may see.
// Unauthenticated operators get the least-privilege set.
func (m *SessionManager) VisibleSections() []domain.SectionID {
	m.mu.Lock()
	role := domain.RoleUnknown
	if m.session.User != nil {
		role = m.session.User.Role
	}
	m.mu.Unlock()

	return domain.VisibleSections(role)
}

// Start launches the background sweeps: one timer watching session
// inactivity (and token staleness), one watching block expiry. Both run at
// the sweep interval until the context is cancelled or Close is called.
// Missed ticks only delay detection, they never break state.
func (m *SessionManager) Start(ctx context.Context) {
	interval := m.cfg.Session.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	go m.run(ctx, interval)
}

// Close stops the background sweeps. Safe to call more than once.
func (m *SessionManager) Close() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

func (m *SessionManager) run(ctx context.Context, interval time.Duration) {
	inactivity := time.NewTicker(interval)
	defer inactivity.Stop()

	blockExpiry := time.NewTicker(interval)
	defer blockExpiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-inactivity.C:
			m.sweepInactivity(ctx)
		case <-blockExpiry.C:
			m.SweepBlockExpiry()
		}
	}
}

// sweepInactivity expires sessions idle past the ceiling and re-verifies
// tokens whose last verification has gone stale.
func (m *SessionManager) sweepInactivity(ctx context.Context) {
	now := m.now()

	timeout := m.cfg.Session.InactivityTimeout
	if timeout <= 0 {
		timeout = defaultInactivityTimeout
	}
	verifyInterval := m.cfg.Session.VerifyInterval
	if verifyInterval <= 0 {
		verifyInterval = defaultVerifyInterval
	}

	m.mu.Lock()
	authenticated := m.session.IsAuthenticated()
	idle := m.session.IdleSince(now)
	stale := authenticated && now.Sub(m.session.LastVerifiedAt) > verifyInterval
	m.mu.Unlock()

	if !authenticated {
		return
	}

	if idle >= timeout {
		m.log.Info("session expired after inactivity", zap.Duration("idle", idle))
		if err := m.endSession(ctx, domain.SessionEndInactivity); err != nil {
			m.log.Error("expire inactive session", zap.Error(err))
		}
		return
	}

	if stale {
		if err := m.verifyToken(ctx); err != nil {
			m.log.Warn("background verification", zap.Error(err))
		}
	}
}

// SweepBlockExpiry lifts the login block once its window has passed.
// Exported alongside ExpireInactiveSession for callers that drive the
// sweeps themselves; the Start loop calls it once per interval.
func (m *SessionManager) SweepBlockExpiry() {
	now := m.now()

	m.mu.Lock()
	lifted := m.attempts.ExpireBlock(now)
	m.mu.Unlock()

	if lifted {
		m.log.Info("login block lifted")
	}
}

// ExpireInactiveSession runs one inactivity check outside the Start loop.
func (m *SessionManager) ExpireInactiveSession(ctx context.Context) {
	m.sweepInactivity(ctx)
}

func (m *SessionManager) publishLoginSucceeded(ctx context.Context, user domain.AuthUser, at time.Time) {
	if m.audit == nil {
		return
	}
	event := domain.LoginSucceededEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		At:       at,
	}
	if err := m.audit.PublishLoginSucceeded(ctx, event); err != nil {
		m.log.Warn("publish login succeeded", zap.Error(err))
	}
}

func (m *SessionManager) publishLoginFailed(ctx context.Context, username string, class domain.FailureClass) {
	if m.audit == nil {
		return
	}

	m.mu.Lock()
	attempts := m.attempts.Attempts
	m.mu.Unlock()

	event := domain.LoginFailedEvent{
		EventID:  uuid.NewString(),
		Username: username,
		Class:    class,
		Attempts: attempts,
		At:       m.now(),
	}
	if err := m.audit.PublishLoginFailed(ctx, event); err != nil {
		m.log.Warn("publish login failed", zap.Error(err))
	}
}

func (m *SessionManager) publishLockoutEngaged(ctx context.Context, username string, attempts int, blockedUntil, at time.Time) {
	if m.audit == nil {
		return
	}
	event := domain.LockoutEngagedEvent{
		EventID:      uuid.NewString(),
		Username:     username,
		Attempts:     attempts,
		BlockedUntil: blockedUntil,
		At:           at,
	}
	if err := m.audit.PublishLockoutEngaged(ctx, event); err != nil {
		m.log.Warn("publish lockout engaged", zap.Error(err))
	}
}

func (m *SessionManager) publishSessionEnded(ctx context.Context, user domain.AuthUser, reason domain.SessionEndReason) {
	if m.audit == nil {
		return
	}
	event := domain.SessionEndedEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Reason:   reason,
		At:       m.now(),
	}
	if err := m.audit.PublishSessionEnded(ctx, event); err != nil {
		m.log.Warn("publish session ended", zap.Error(err))
	}
}
