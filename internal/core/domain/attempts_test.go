package domain

import (
	"testing"
	"time"
)

func TestRegisterFailureTripsBlockAtThreshold(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var state LoginAttemptState

	for i := 1; i < 5; i++ {
		if tripped := state.RegisterFailure(now, 5, 15*time.Minute); tripped {
			t.Fatalf("attempt %d should not trip the block", i)
		}
		if state.Blocked {
			t.Fatalf("blocked after %d attempts", i)
		}
	}

	if tripped := state.RegisterFailure(now, 5, 15*time.Minute); !tripped {
		t.Fatal("fifth attempt should trip the block")
	}
	if !state.Blocked {
		t.Fatal("state should be blocked")
	}
	if want := now.Add(15 * time.Minute); !state.BlockedUntil.Equal(want) {
		t.Fatalf("BlockedUntil = %v, want %v", state.BlockedUntil, want)
	}
}

func TestApplyServerOverridesOnlyItsOwnCounterpart(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	state := LoginAttemptState{Attempts: 2}
	attempts := 4
	state.ApplyServer(&attempts, nil, now)
	if state.Attempts != 4 {
		t.Fatalf("Attempts = %d, want 4", state.Attempts)
	}
	if state.Blocked {
		t.Fatal("attempts alone must not engage a block")
	}

	remaining := 90 * time.Second
	state.ApplyServer(nil, &remaining, now)
	if state.Attempts != 4 {
		t.Fatalf("Attempts = %d, want unchanged 4", state.Attempts)
	}
	if !state.Blocked {
		t.Fatal("block_remaining should engage the block")
	}
	if want := now.Add(90 * time.Second); !state.BlockedUntil.Equal(want) {
		t.Fatalf("BlockedUntil = %v, want %v", state.BlockedUntil, want)
	}
}

func TestExpireBlock(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	state := LoginAttemptState{Attempts: 5, Blocked: true, BlockedUntil: now.Add(time.Minute)}

	if state.ExpireBlock(now) {
		t.Fatal("block should still be active")
	}

	if !state.ExpireBlock(now.Add(2 * time.Minute)) {
		t.Fatal("block should have expired")
	}
	if state.Attempts != 0 || state.Blocked || !state.BlockedUntil.IsZero() {
		t.Fatalf("state not reset after expiry: %+v", state)
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var idle LoginAttemptState
	if idle.Remaining(now) != 0 {
		t.Fatal("unblocked state should report zero remaining")
	}

	blocked := LoginAttemptState{Blocked: true, BlockedUntil: now.Add(10 * time.Minute)}
	if got := blocked.Remaining(now); got != 10*time.Minute {
		t.Fatalf("Remaining = %v, want 10m", got)
	}
	if got := blocked.Remaining(now.Add(11 * time.Minute)); got != 0 {
		t.Fatalf("Remaining past expiry = %v, want 0", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	state := LoginAttemptState{Attempts: 3, Blocked: true, BlockedUntil: time.Now()}
	state.Reset()
	if state.Attempts != 0 || state.Blocked || !state.BlockedUntil.IsZero() {
		t.Fatalf("Reset left residue: %+v", state)
	}
}
