// Package retry provides a bounded fixed-backoff retry combinator.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy bounds a probe loop: at most Attempts calls with Backoff between them.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// Do invokes probe until it returns nil, the policy is exhausted, or ctx is
// cancelled. On exhaustion the last probe error is returned; on cancellation
// the ctx error is returned (or the last probe error if one occurred first).
func Do(ctx context.Context, p Policy, operation string, probe func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		last = probe()
		if last == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		slog.Debug("retry: probe failed",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("error", last.Error()))

		if p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last
			case <-timer.C:
			}
		}
	}
	return last
}
