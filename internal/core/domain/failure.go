package domain

import "time"

// FailureClass categorises login failures for display. The UI keys inline
// messages off this value and never re-derives it from message text.
type FailureClass string

const (
	// FailureCredentials means the username or password was wrong.
	FailureCredentials FailureClass = "credentials"
	// FailurePermission means authentication succeeded but the account may
	// not use the dashboard. Does not count toward the lockout threshold.
	FailurePermission FailureClass = "permission"
	// FailureRateLimit means too many attempts, whether enforced locally or
	// by the server.
	FailureRateLimit FailureClass = "rate_limit"
	// FailureServer means a transport failure, timeout, or an unstructured
	// server error. Never counted against the operator.
	FailureServer FailureClass = "server"
)

// LoginResult is the typed outcome of a login call. Failures carry a class
// and user-facing message instead of an error so nothing raw escapes to the
// presentation layer.
type LoginResult struct {
	Success        bool
	User           *AuthUser
	Class          FailureClass
	Message        string
	BlockRemaining time.Duration
}

// LoginSuccess builds a successful result for the supplied identity.
func LoginSuccess(user AuthUser) LoginResult {
	userCopy := user
	return LoginResult{Success: true, User: &userCopy}
}

// LoginFailure builds a failed result with the given classification.
func LoginFailure(class FailureClass, message string) LoginResult {
	return LoginResult{Class: class, Message: message}
}
