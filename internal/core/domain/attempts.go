package domain

import "time"

// LoginAttemptState throttles repeated failed logins. The zero value is the
// unblocked state with no recorded attempts.
type LoginAttemptState struct {
	Attempts     int
	Blocked      bool
	BlockedUntil time.Time
}

// RegisterFailure records one failed credential attempt. Reaching maxAttempts
// engages the block for blockFor from now. Returns true when this failure
// tripped the block.
func (s *LoginAttemptState) RegisterFailure(now time.Time, maxAttempts int, blockFor time.Duration) bool {
	s.Attempts++
	if s.Attempts >= maxAttempts && !s.Blocked {
		s.Blocked = true
		s.BlockedUntil = now.Add(blockFor)
		return true
	}
	return false
}

// ApplyServer overlays server-provided throttle metadata. Each field
// overrides only its own counterpart: a missing field leaves the
// client-side value in place.
func (s *LoginAttemptState) ApplyServer(attempts *int, blockRemaining *time.Duration, now time.Time) {
	if attempts != nil && *attempts >= 0 {
		s.Attempts = *attempts
	}
	if blockRemaining != nil && *blockRemaining > 0 {
		s.Blocked = true
		s.BlockedUntil = now.Add(*blockRemaining)
	}
}

// Reset clears attempts and any active block.
func (s *LoginAttemptState) Reset() {
	*s = LoginAttemptState{}
}

// ExpireBlock resets the state once the block window has passed. Returns true
// when a block was actually lifted.
func (s *LoginAttemptState) ExpireBlock(now time.Time) bool {
	if !s.Blocked {
		return false
	}
	if now.Before(s.BlockedUntil) {
		return false
	}
	s.Reset()
	return true
}

// Remaining reports how much of the block window is left. Zero when not
// blocked or already expired.
func (s LoginAttemptState) Remaining(now time.Time) time.Duration {
	if !s.Blocked {
		return 0
	}
	if remaining := s.BlockedUntil.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
