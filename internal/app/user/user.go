/*
Package user contains the core data structures and enforcement logic for chat participants.

It defines the User record persisted by the store, together with the pure state
transitions that govern warnings, typing locks, account blocks, and soft deletion.
The transitions here perform no I/O; callers apply the resulting field changes
against the authoritative store.
*/
package user

import "time"

// Role identifies the privilege level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// BlockType identifies the kind of account-level block in effect.
type BlockType string

const (
	BlockNone      BlockType = "none"
	Block24h       BlockType = "24h"
	BlockPermanent BlockType = "permanent"
)

// User represents a chat participant's identity and standing.
// The Alias is the only identity ever shown in the room; FullName and Email
// never leave the auth and admin surfaces.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string

	// Alias is the rotating anonymous display name, unique among
	// non-deleted accounts.
	Alias string

	IsVerified   bool
	OTPCode      string
	OTPExpiresAt *time.Time

	Role Role

	// Enforcement state.
	WarningCount    int
	IsTypingBlocked bool
	IsBlocked       bool
	BlockType       BlockType
	BlockedAt       *time.Time
	BlockExpiresAt  *time.Time
	IsDeleted       bool

	IsOnline  bool
	LastSeen  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account has administrator privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Restricted reports whether the account is currently barred from the room
// entirely (blocked or deleted). A typing lock is a separate, narrower state.
func (u *User) Restricted() bool {
	return u.IsBlocked || u.IsDeleted
}
