/*
Package moderation classifies chat messages as appropriate or not before they
reach the room.

Classification is a two-strategy pipeline: a remote LLM classifier (Google
GenAI) under a strict timeout, and a local denylist filter that needs no
external dependency. The pipeline is conservative: a message only passes when
at least one filter has explicitly cleared it. Remote errors, timeouts, and
unparseable replies all fall through to the denylist and are never surfaced to
the sender.
*/
package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"incognichat/internal/metrics"
	"incognichat/internal/pkg/logx"
)

// Verdict is the outcome of classifying one message.
type Verdict struct {
	Inappropriate bool
	Reason        string
}

// RemoteClassifier is the primary classification strategy. The second return
// value reports whether the reply could be confidently interpreted; a false
// value (or an error) sends the message to the fallback filter.
type RemoteClassifier interface {
	Classify(ctx context.Context, text string) (Verdict, bool, error)
}

// Service composes the remote classifier and the denylist fallback behind a
// single Classify entry point.
type Service struct {
	remote   RemoteClassifier
	denylist *Denylist
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewService builds a Service. A nil remote disables the primary path
// entirely; the denylist then decides alone.
func NewService(remote RemoteClassifier, timeout time.Duration) *Service {
	return &Service{
		remote:   remote,
		denylist: NewDenylist(),
		timeout:  timeout,
		logger:   logx.Logger().With().Str("component", "Moderation").Logger(),
	}
}

// Classify runs text through the pipeline and always returns a verdict.
// Remote failures are recovered locally and never become hard errors.
func (s *Service) Classify(ctx context.Context, text string) Verdict {
	start := time.Now()
	defer func() {
		metrics.ModerationLatency.Observe(time.Since(start).Seconds())
	}()

	if s.remote == nil {
		return s.denylist.Check(text)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	verdict, ok, err := s.remote.Classify(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Remote classifier failed, using denylist fallback.")
		return s.denylist.Check(text)
	}
	if !ok {
		// The reply could not be confidently parsed; never resolve
		// uncertainty in favor of letting the message through.
		s.logger.Warn().Msg("Remote classifier reply unclear, using denylist as secondary check.")
		return s.denylist.Check(text)
	}

	return verdict
}
