package user

import (
	"errors"
	"testing"
	"time"
)

func TestRecordViolation_CountsAndThreshold(t *testing.T) {
	u := &User{ID: "u1", Role: RoleUser}

	for n := 1; n <= 10; n++ {
		v := u.RecordViolation()

		if u.WarningCount != n {
			t.Fatalf("after %d violations WarningCount = %d, want %d", n, u.WarningCount, n)
		}
		if v.Count != n {
			t.Fatalf("violation %d: Count = %d, want %d", n, v.Count, n)
		}

		wantBlocked := n >= WarningLimit
		if u.IsTypingBlocked != wantBlocked {
			t.Fatalf("after %d violations IsTypingBlocked = %v, want %v", n, u.IsTypingBlocked, wantBlocked)
		}
		if wantBlocked && v.Signal != SignalBlocked {
			t.Fatalf("violation %d: Signal = %v, want SignalBlocked", n, v.Signal)
		}
		if !wantBlocked {
			if v.Signal != SignalWarned {
				t.Fatalf("violation %d: Signal = %v, want SignalWarned", n, v.Signal)
			}
			if v.Remaining != WarningLimit-n {
				t.Fatalf("violation %d: Remaining = %d, want %d", n, v.Remaining, WarningLimit-n)
			}
		}
	}
}

func TestViolationOutcome_MatchesRecordViolation(t *testing.T) {
	for n := 1; n <= 8; n++ {
		u := &User{WarningCount: n - 1}
		direct := u.RecordViolation()
		derived := ViolationOutcome(n)

		if direct != derived {
			t.Errorf("count %d: RecordViolation = %+v, ViolationOutcome = %+v", n, direct, derived)
		}
	}
}

func TestBlock_Temporary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &User{ID: "u1", Role: RoleUser}

	if err := u.Block(Block24h, now); err != nil {
		t.Fatalf("Block() error = %v", err)
	}

	if !u.IsBlocked {
		t.Error("IsBlocked = false after Block")
	}
	if u.BlockType != Block24h {
		t.Errorf("BlockType = %q, want %q", u.BlockType, Block24h)
	}
	if u.BlockExpiresAt == nil || !u.BlockExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Errorf("BlockExpiresAt = %v, want exactly now+24h", u.BlockExpiresAt)
	}
}

func TestBlock_PermanentHasNoExpiry(t *testing.T) {
	u := &User{ID: "u1", Role: RoleUser}

	if err := u.Block(BlockPermanent, time.Now()); err != nil {
		t.Fatalf("Block() error = %v", err)
	}

	if u.BlockExpiresAt != nil {
		t.Errorf("BlockExpiresAt = %v for permanent block, want nil", u.BlockExpiresAt)
	}
}

func TestCheckBlockExpiry_Boundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u := &User{ID: "u1", Role: RoleUser}
	if err := u.Block(Block24h, now); err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	expiry := *u.BlockExpiresAt

	// One second before expiry: no-op.
	if changed := u.CheckBlockExpiry(expiry.Add(-time.Second)); changed {
		t.Error("CheckBlockExpiry before expiry reported a change")
	}
	if !u.IsBlocked {
		t.Error("block cleared before expiry")
	}

	// One second after expiry: cleared.
	if changed := u.CheckBlockExpiry(expiry.Add(time.Second)); !changed {
		t.Error("CheckBlockExpiry after expiry reported no change")
	}
	if u.IsBlocked || u.BlockType != BlockNone || u.BlockExpiresAt != nil || u.BlockedAt != nil {
		t.Errorf("block state not fully cleared: %+v", u)
	}
}

func TestCheckBlockExpiry_PermanentNeverExpires(t *testing.T) {
	u := &User{ID: "u1", Role: RoleUser}
	if err := u.Block(BlockPermanent, time.Now()); err != nil {
		t.Fatalf("Block() error = %v", err)
	}

	if changed := u.CheckBlockExpiry(time.Now().Add(1000 * time.Hour)); changed {
		t.Error("permanent block expired")
	}
	if !u.IsBlocked {
		t.Error("permanent block cleared")
	}
}

func TestResetWarnings_Idempotent(t *testing.T) {
	u := &User{WarningCount: 6, IsTypingBlocked: true}

	u.ResetWarnings()
	if u.WarningCount != 0 || u.IsTypingBlocked {
		t.Fatalf("after reset: count=%d typingBlocked=%v", u.WarningCount, u.IsTypingBlocked)
	}

	u.ResetWarnings()
	if u.WarningCount != 0 || u.IsTypingBlocked {
		t.Fatalf("after second reset: count=%d typingBlocked=%v", u.WarningCount, u.IsTypingBlocked)
	}
}

func TestBlock_AdminProtected(t *testing.T) {
	u := &User{ID: "a1", Role: RoleAdmin}

	if err := u.Block(Block24h, time.Now()); !errors.Is(err, ErrAdminProtected) {
		t.Errorf("Block(admin) error = %v, want ErrAdminProtected", err)
	}
	if u.IsBlocked {
		t.Error("admin account was blocked despite rejection")
	}
}

func TestSoftDelete(t *testing.T) {
	u := &User{ID: "u1", Role: RoleUser, IsOnline: true}

	if err := u.SoftDelete(); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if !u.IsDeleted || u.IsOnline {
		t.Errorf("after delete: IsDeleted=%v IsOnline=%v", u.IsDeleted, u.IsOnline)
	}

	admin := &User{ID: "a1", Role: RoleAdmin}
	if err := admin.SoftDelete(); !errors.Is(err, ErrAdminProtected) {
		t.Errorf("SoftDelete(admin) error = %v, want ErrAdminProtected", err)
	}
}

func TestRestricted(t *testing.T) {
	tests := []struct {
		name string
		u    User
		want bool
	}{
		{"clean", User{}, false},
		{"blocked", User{IsBlocked: true}, true},
		{"deleted", User{IsDeleted: true}, true},
		{"typing locked only", User{IsTypingBlocked: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.Restricted(); got != tt.want {
				t.Errorf("Restricted() = %v, want %v", got, tt.want)
			}
		})
	}
}
