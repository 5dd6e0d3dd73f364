package moderation

import "testing"

func TestDenylistCheck(t *testing.T) {
	d := NewDenylist()

	tests := []struct {
		name    string
		text    string
		flagged bool
	}{
		{"clean message", "hello there, how is everyone doing?", false},
		{"plain profanity", "this is bullshit", true},
		{"uppercase profanity", "STFU right now", true},
		{"harassment phrase", "you are an idiot", true},
		{"self harm phrase", "just kill yourself", true},
		{"punctuation bypass", "w.t.f is this", true},
		{"mixed case with punctuation", "What The... F-u-c-k", true},
		{"empty message", "", false},
		{"only punctuation", "!!! ??? ...", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := d.Check(tt.text)
			if v.Inappropriate != tt.flagged {
				t.Errorf("Check(%q).Inappropriate = %v, want %v", tt.text, v.Inappropriate, tt.flagged)
			}
			if tt.flagged && v.Reason != FallbackReason {
				t.Errorf("Check(%q).Reason = %q, want %q", tt.text, v.Reason, FallbackReason)
			}
		})
	}
}

func TestDenylistWithCustomTerms(t *testing.T) {
	d := NewDenylistWithTerms([]string{"Forbidden!", "", "  "})

	if v := d.Check("this word is forbidden here"); !v.Inappropriate {
		t.Error("custom term should match after normalization")
	}
	if v := d.Check("everything is fine"); v.Inappropriate {
		t.Error("clean text should not match custom terms")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced  out  ", "spaced  out"},
		{"MiXeD123", "mixed123"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
