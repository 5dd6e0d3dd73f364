package moderation

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubRemote struct {
	verdict Verdict
	ok      bool
	err     error
	delay   time.Duration
	calls   int
}

func (s *stubRemote) Classify(ctx context.Context, text string) (Verdict, bool, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Verdict{}, false, ctx.Err()
		}
	}
	return s.verdict, s.ok, s.err
}

func TestServiceRemoteVerdictAuthoritative(t *testing.T) {
	// The remote verdict wins in both directions, even when the denylist
	// would disagree.
	tests := []struct {
		name    string
		text    string
		verdict Verdict
	}{
		{"remote flags clean text", "have a nice day", Verdict{Inappropriate: true, Reason: "spam"}},
		{"remote clears profane text", "this is bullshit", Verdict{Inappropriate: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &stubRemote{verdict: tt.verdict, ok: true}
			svc := NewService(remote, time.Second)

			got := svc.Classify(context.Background(), tt.text)
			if got != tt.verdict {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.text, got, tt.verdict)
			}
			if remote.calls != 1 {
				t.Errorf("remote called %d times, want 1", remote.calls)
			}
		})
	}
}

func TestServiceFallsBackOnRemoteError(t *testing.T) {
	remote := &stubRemote{err: errors.New("upstream unavailable")}
	svc := NewService(remote, time.Second)

	if v := svc.Classify(context.Background(), "this is bullshit"); !v.Inappropriate {
		t.Error("denylist fallback should flag profanity when remote errors")
	}
	if v := svc.Classify(context.Background(), "hello everyone"); v.Inappropriate {
		t.Error("denylist fallback should clear clean text when remote errors")
	}
}

func TestServiceFallsBackOnUnclearReply(t *testing.T) {
	remote := &stubRemote{ok: false}
	svc := NewService(remote, time.Second)

	if v := svc.Classify(context.Background(), "eat shit"); !v.Inappropriate {
		t.Error("denylist should decide when the remote reply is unclear")
	}
}

func TestServiceRemoteTimeout(t *testing.T) {
	remote := &stubRemote{delay: 200 * time.Millisecond, verdict: Verdict{}, ok: true}
	svc := NewService(remote, 10*time.Millisecond)

	start := time.Now()
	v := svc.Classify(context.Background(), "go to hell")
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("Classify took %v, timeout not enforced", elapsed)
	}
	if !v.Inappropriate {
		t.Error("denylist fallback should flag after remote timeout")
	}
}

func TestServiceWithoutRemote(t *testing.T) {
	svc := NewService(nil, time.Second)

	if v := svc.Classify(context.Background(), "screw you"); !v.Inappropriate {
		t.Error("denylist-only service should flag profanity")
	}
	if v := svc.Classify(context.Background(), "good morning"); v.Inappropriate {
		t.Error("denylist-only service should clear clean text")
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		verdict Verdict
		ok      bool
	}{
		{
			"plain json flagged",
			`{"isInappropriate": true, "reason": "profanity"}`,
			Verdict{Inappropriate: true, Reason: "profanity"},
			true,
		},
		{
			"plain json clean with null reason",
			`{"isInappropriate": false, "reason": null}`,
			Verdict{},
			true,
		},
		{
			"json wrapped in code fence",
			"```json\n{\"isInappropriate\": true, \"reason\": \"harassment\"}\n```",
			Verdict{Inappropriate: true, Reason: "harassment"},
			true,
		},
		{
			"json wrapped in prose",
			`Here is my verdict: {"isInappropriate": false, "reason": null} as requested.`,
			Verdict{},
			true,
		},
		{
			"malformed json with inappropriate marker",
			`The verdict is "isInappropriate": true but I cannot format it`,
			Verdict{Inappropriate: true, Reason: "Content flagged by AI moderator"},
			true,
		},
		{
			"free text reply",
			"I think this message is fine.",
			Verdict{},
			false,
		},
		{
			"empty reply",
			"",
			Verdict{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := parseReply(tt.reply)
			if err != nil {
				t.Fatalf("parseReply(%q) error: %v", tt.reply, err)
			}
			if ok != tt.ok {
				t.Fatalf("parseReply(%q) ok = %v, want %v", tt.reply, ok, tt.ok)
			}
			if ok && v != tt.verdict {
				t.Errorf("parseReply(%q) = %+v, want %+v", tt.reply, v, tt.verdict)
			}
		})
	}
}
