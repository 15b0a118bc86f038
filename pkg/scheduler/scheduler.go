package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Job is one unit of scheduled work, typically a full ingestion run.
type Job func(ctx context.Context) error

// Config holds the configuration for the scheduler.
type Config struct {
	Interval     time.Duration // Interval between job runs
	RunTimeout   time.Duration // Timeout for each run; 0 disables the per-run deadline
	MaxRetries   int           // Maximum number of retry attempts for failed runs
	RetryBackoff time.Duration // Backoff duration between retry attempts
}

// DefaultConfig returns a Config with sensible defaults for the given interval.
func DefaultConfig(interval time.Duration) Config {
	return Config{
		Interval:     interval,
		MaxRetries:   3,
		RetryBackoff: 300 * time.Millisecond,
	}
}

// Start runs job every cfg.Interval until the context is cancelled.
//
// Returns nil on context cancellation (graceful shutdown), or an error if a
// run fails after all retries.
func Start(ctx context.Context, cfg Config, job Job) error {
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			// Graceful shutdown - exit without error
			return nil

		case <-t.C:
			var lastErr error
			for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
				if ctx.Err() != nil {
					return nil
				}

				lastErr = runOnce(ctx, cfg.RunTimeout, job)
				if lastErr == nil {
					break
				}

				// Check if the failure was cancellation rather than the job
				if ctx.Err() != nil {
					return nil
				}

				// Don't sleep after the last attempt
				if attempt < cfg.MaxRetries {
					select {
					case <-time.After(cfg.RetryBackoff):
					case <-ctx.Done():
						return nil
					}
				}
			}

			if lastErr != nil {
				return fmt.Errorf("scheduled run failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
			}
		}
	}
}

func runOnce(ctx context.Context, timeout time.Duration, job Job) error {
	if timeout <= 0 {
		return job(ctx)
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return job(runCtx)
}
