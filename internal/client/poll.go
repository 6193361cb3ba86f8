package client

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Terminal status sentinels recognized by the poll loop.
const (
	// StatusCompleted is the terminal status signaling success.
	StatusCompleted = "Analysis Completed"

	// StatusFailed is the terminal status signaling failure.
	StatusFailed = "Analysis Failed"
)

// DefaultPollInterval is the cadence between status queries.
const DefaultPollInterval = 2000 * time.Millisecond

// pollOptions holds configurable polling behavior.
type pollOptions struct {
	interval         time.Duration
	timeout          time.Duration
	maxAttempts      int
	failureThreshold int
}

// PollOption customizes PollUntilComplete behavior.
type PollOption func(*pollOptions)

// WithInterval sets the cadence between status queries.
// Non-positive values are ignored.
func WithInterval(d time.Duration) PollOption {
	return func(o *pollOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithTimeout bounds the total polling time. When the bound is exceeded the
// loop stops with ErrPollTimeout. Zero means unbounded (the default).
func WithTimeout(d time.Duration) PollOption {
	return func(o *pollOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxAttempts bounds the number of status queries. When the bound is
// reached without a terminal status the loop stops with
// ErrAttemptsExhausted. Zero means unbounded (the default).
func WithMaxAttempts(n int) PollOption {
	return func(o *pollOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithFailureThreshold sets how many consecutive status-query failures the
// loop tolerates before surfacing the error. The default is 1: the first
// failure surfaces immediately.
func WithFailureThreshold(n int) PollOption {
	return func(o *pollOptions) {
		if n > 0 {
			o.failureThreshold = n
		}
	}
}

// PollUntilComplete queries the task's status on a fixed cadence until a
// terminal status is observed. The loop is sequential: each query completes
// before the next wait begins, so at most one query is ever in flight and
// consecutive queries are separated by at least the interval. The first
// query happens one full interval after invocation, not immediately.
//
// Every non-terminal status observed is forwarded verbatim to onStatus
// (which may be nil). On StatusCompleted the loop stops permanently and
// returns nil, exactly once. On StatusFailed it returns ErrAnalysisFailed.
// An ErrTaskNotFound from a query surfaces immediately regardless of the
// failure threshold, since retrying cannot recover it. Cancelling the
// context stops the loop cleanly with ctx.Err().
func (c *Client) PollUntilComplete(
	ctx context.Context,
	taskID string,
	onStatus func(status string),
	opts ...PollOption,
) error {
	if taskID == "" {
		return ErrEmptyTaskID
	}

	options := pollOptions{
		interval:         DefaultPollInterval,
		failureThreshold: 1,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := c.logger.With("task_id", taskID)

	var deadline <-chan time.Time
	if options.timeout > 0 {
		deadlineTimer := time.NewTimer(options.timeout)
		defer deadlineTimer.Stop()
		deadline = deadlineTimer.C
	}

	timer := time.NewTimer(options.interval)
	defer timer.Stop()

	attempts := 0
	consecutiveFailures := 0

	for {
		select {
		case <-ctx.Done():
			logger.Debug("polling cancelled", "error", ctx.Err())
			return ctx.Err()

		case <-deadline:
			logger.Debug("polling timed out", "attempts", attempts)
			return fmt.Errorf("%w after %d attempts", ErrPollTimeout, attempts)

		case <-timer.C:
			status, err := c.Status(ctx, taskID)
			attempts++

			if err != nil {
				if errors.Is(err, ErrTaskNotFound) || ctx.Err() != nil {
					return err
				}

				consecutiveFailures++
				logger.Warn("status query failed",
					"consecutive_failures", consecutiveFailures,
					"error", err)
				if consecutiveFailures >= options.failureThreshold {
					return err
				}
			} else {
				consecutiveFailures = 0

				switch status {
				case StatusCompleted:
					logger.Info("analysis completed", "attempts", attempts)
					return nil
				case StatusFailed:
					logger.Info("analysis failed", "attempts", attempts)
					return ErrAnalysisFailed
				}

				logger.Debug("analysis in progress", "status", status)
				if onStatus != nil {
					onStatus(status)
				}
			}

			if options.maxAttempts > 0 && attempts >= options.maxAttempts {
				logger.Debug("polling attempts exhausted", "attempts", attempts)
				return fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempts)
			}

			// The wait restarts only after the query returned, so the
			// inter-query gap is never shorter than the interval.
			timer.Reset(options.interval)
		}
	}
}
