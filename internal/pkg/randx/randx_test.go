package randx

import (
	"regexp"
	"testing"
)

var aliasPattern = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+[1-9]\d{0,3}$`)

func TestAlias_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		alias, err := Alias()
		if err != nil {
			t.Fatalf("Alias() error = %v", err)
		}
		if !aliasPattern.MatchString(alias) {
			t.Errorf("Alias() = %q, does not match expected shape", alias)
		}
	}
}

func TestOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := OTP()
		if err != nil {
			t.Fatalf("OTP() error = %v", err)
		}
		if len(code) != OTPLength {
			t.Fatalf("OTP() length = %d, want %d", len(code), OTPLength)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("OTP() = %q contains non-digit", code)
			}
		}
	}
}

func TestMessageID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := MessageID()
		if seen[id] {
			t.Fatalf("MessageID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}
