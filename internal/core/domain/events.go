package domain

import "time"

// LoginSucceededEvent represents the payload for staff.auth.login_succeeded messages.
type LoginSucceededEvent struct {
	EventID  string
	UserID   string
	Username string
	Role     Role
	At       time.Time
}

// LoginFailedEvent represents the payload for staff.auth.login_failed messages.
type LoginFailedEvent struct {
	EventID  string
	Username string
	Class    FailureClass
	Attempts int
	At       time.Time
}

// LockoutEngagedEvent represents the payload for staff.auth.lockout_engaged messages.
type LockoutEngagedEvent struct {
	EventID      string
	Username     string
	Attempts     int
	BlockedUntil time.Time
	At           time.Time
}

// SessionEndReason distinguishes how a session terminated.
type SessionEndReason string

const (
	SessionEndLogout     SessionEndReason = "logout"
	SessionEndInactivity SessionEndReason = "inactivity"
	SessionEndRevoked    SessionEndReason = "revoked"
)

// SessionEndedEvent represents the payload for staff.auth.session_ended messages.
type SessionEndedEvent struct {
	EventID  string
	UserID   string
	Username string
	Reason   SessionEndReason
	At       time.Time
}
