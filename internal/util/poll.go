// ABOUTME: Bounded polling helper for operations that complete asynchronously
// ABOUTME: Each attempt reports ready, pending, or terminal failure
package util

import (
	"context"
	"time"
)

// Outcome is the result of a single poll attempt.
type Outcome int

const (
	// Pending means the condition is not met yet; keep polling.
	Pending Outcome = iota
	// Ready means the condition is met.
	Ready
	// Failed means the condition can no longer be met; stop polling.
	Failed
)

// Poll invokes fn up to attempts times, waiting interval between attempts.
// It returns (true, nil) once fn reports Ready, (false, nil) when fn
// reports Failed or the attempts are exhausted, and (false, err) when fn
// returns an error or the context is canceled. Exhausting the bound is an
// ordinary not-ready result, not an error.
func Poll(ctx context.Context, attempts int, interval time.Duration, fn func(context.Context) (Outcome, error)) (bool, error) {
	for attempt := 0; attempt < attempts; attempt++ {
		outcome, err := fn(ctx)
		if err != nil {
			return false, err
		}
		switch outcome {
		case Ready:
			return true, nil
		case Failed:
			return false, nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
	return false, nil
}
