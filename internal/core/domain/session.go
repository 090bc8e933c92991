package domain

import "time"

// Session is the in-memory record of the current authenticated operator.
// Token and User are always set or cleared together.
type Session struct {
	User           *AuthUser
	Token          string
	LastActiveAt   time.Time
	LastVerifiedAt time.Time
}

// IsAuthenticated reports whether a user is currently signed in.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// Establish replaces the session with a freshly authenticated identity,
// stamping both activity and verification to the supplied moment.
func (s *Session) Establish(user AuthUser, token string, at time.Time) {
	userCopy := user
	s.User = &userCopy
	s.Token = token
	s.LastActiveAt = at
	s.LastVerifiedAt = at
}

// Clear drops the identity and token together, returning the session to the
// unauthenticated state.
func (s *Session) Clear() {
	s.User = nil
	s.Token = ""
	s.LastActiveAt = time.Time{}
	s.LastVerifiedAt = time.Time{}
}

// IdleSince reports how long the session has been without operator activity.
func (s Session) IdleSince(now time.Time) time.Duration {
	if s.LastActiveAt.IsZero() {
		return 0
	}
	return now.Sub(s.LastActiveAt)
}

// PersistedSession is the durable form of a session: the opaque bearer token
// and the identity record, stored as one unit so neither can outlive the
// other across restarts.
type PersistedSession struct {
	Token          string    `json:"token"`
	User           AuthUser  `json:"user"`
	SavedAt        time.Time `json:"saved_at"`
	LastVerifiedAt time.Time `json:"last_verified_at"`
}
