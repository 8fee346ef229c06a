// Package gate decides when a newly arrived file is safe to read.
//
// Scanner software writes intake files incrementally and may hold an
// exclusive lock until the write completes. The gate waits out that window:
// a settle delay after detection, then a bounded probe loop that requires
// the file to be non-empty and openable for append.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/wavescan/internal/retry"
)

// ErrLockTimeout is returned when a file never became readable within the
// configured probe budget. The caller must leave the file in place.
var ErrLockTimeout = errors.New("gate: file lock timeout")

// Gate holds the readiness policy for one intake directory.
type Gate struct {
	Settle   time.Duration // pause after detection before the first probe
	Backoff  time.Duration // pause between probes
	Attempts int           // probe budget
	Logger   *slog.Logger
}

// Wait blocks until path is confirmed ready, the probe budget is exhausted
// (ErrLockTimeout), or ctx is cancelled.
func (g Gate) Wait(ctx context.Context, path string) error {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if g.Settle > 0 {
		timer := time.NewTimer(g.Settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	err := retry.Do(ctx, retry.Policy{Attempts: g.Attempts, Backoff: g.Backoff}, "gate", func() error {
		return probe(path)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Warn("gate: file never became readable",
			slog.String("path", path),
			slog.Int("attempts", g.Attempts),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrLockTimeout, path, err)
	}
	return nil
}

// probe fails when the file is missing, still empty, or cannot be opened
// for append. Append-open is the portable proxy for "no exclusive lock held
// by the producer": on Windows it fails outright while the scanner still
// owns the handle, and on every platform it confirms the path is writable
// without touching content.
func probe(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("gate: %s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("gate: %s is empty", path)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
