package user

import (
	"errors"
	"time"
)

const (
	// WarningLimit is the violation count at which a user's typing becomes
	// locked. The lock is sticky until an admin resets warnings.
	WarningLimit = 6

	// TempBlockDuration is the lifetime of a 24h account block.
	TempBlockDuration = 24 * time.Hour
)

// ErrAdminProtected is returned when an enforcement action targets an
// administrator account. The caller must report it; it is never ignored.
var ErrAdminProtected = errors.New("enforcement action not permitted on admin account")

// ViolationSignal tells the caller which notice to deliver after a violation
// was recorded.
type ViolationSignal int

const (
	// SignalWarned means the user received a warning below the limit.
	SignalWarned ViolationSignal = iota

	// SignalBlocked means the warning limit was reached and typing is now locked.
	SignalBlocked
)

// Violation is the outcome of recording one moderation violation.
type Violation struct {
	Signal    ViolationSignal
	Count     int
	Remaining int
}

// RecordViolation increments the warning count and locks typing once the
// count reaches WarningLimit. The lock never clears on its own.
func (u *User) RecordViolation() Violation {
	u.WarningCount++

	if u.WarningCount >= WarningLimit {
		u.IsTypingBlocked = true
		return Violation{Signal: SignalBlocked, Count: u.WarningCount}
	}

	return Violation{
		Signal:    SignalWarned,
		Count:     u.WarningCount,
		Remaining: WarningLimit - u.WarningCount,
	}
}

// ViolationOutcome maps an authoritative warning count (as returned by the
// store's atomic increment) to the signal the gateway must emit. It mirrors
// RecordViolation for callers that applied the increment elsewhere.
func ViolationOutcome(count int) Violation {
	if count >= WarningLimit {
		return Violation{Signal: SignalBlocked, Count: count}
	}
	return Violation{Signal: SignalWarned, Count: count, Remaining: WarningLimit - count}
}

// CheckBlockExpiry clears an expired 24h block and reports whether the block
// state changed. It must be called lazily on every login and connection
// attempt; there is no background sweep.
func (u *User) CheckBlockExpiry(now time.Time) bool {
	if u.BlockType == Block24h && u.BlockExpiresAt != nil && now.After(*u.BlockExpiresAt) {
		u.IsBlocked = false
		u.BlockType = BlockNone
		u.BlockedAt = nil
		u.BlockExpiresAt = nil
		return true
	}
	return false
}

// ResetWarnings clears the warning count and the typing lock. Administrative only.
func (u *User) ResetWarnings() {
	u.WarningCount = 0
	u.IsTypingBlocked = false
}

// Block applies an account-level block. A 24h block expires TempBlockDuration
// after now; a permanent block has no expiry. Blocking an admin is an error.
func (u *User) Block(kind BlockType, now time.Time) error {
	if u.IsAdmin() {
		return ErrAdminProtected
	}

	u.IsBlocked = true
	u.BlockType = kind
	blockedAt := now
	u.BlockedAt = &blockedAt

	if kind == Block24h {
		expires := now.Add(TempBlockDuration)
		u.BlockExpiresAt = &expires
	} else {
		u.BlockExpiresAt = nil
	}

	return nil
}

// Unblock clears all block state.
func (u *User) Unblock() {
	u.IsBlocked = false
	u.BlockType = BlockNone
	u.BlockedAt = nil
	u.BlockExpiresAt = nil
}

// SoftDelete marks the account deleted and offline. Terminal; there is no
// undelete. Deleting an admin is an error.
func (u *User) SoftDelete() error {
	if u.IsAdmin() {
		return ErrAdminProtected
	}

	u.IsDeleted = true
	u.IsOnline = false
	return nil
}
