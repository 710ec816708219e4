package provider

import (
	"context"
	"fmt"
	"time"
)

type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateError   State = "error"
)

// JobStatus is a point-in-time snapshot of a submitted extraction job.
type JobStatus struct {
	State   State
	Message string
}

// Client is the interface all extraction providers satisfy. Providers are
// opaque: content goes in, a job id comes back, and the result text is
// fetched once polling reports success.
type Client interface {
	Submit(ctx context.Context, content, instructions string) (string, error)
	Poll(ctx context.Context, jobID string) (*JobStatus, error)
	FetchResult(ctx context.Context, jobID string) (string, error)
}

// WaitForResult polls a job at a fixed interval until it reaches a terminal
// state, then fetches the result text. Attempts are bounded; exhaustion is a
// timeout error. A started job cannot be cancelled — callers may only await
// or abandon the outcome.
func WaitForResult(ctx context.Context, c Client, jobID string, interval time.Duration, maxAttempts int) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(interval)
		}

		status, err := c.Poll(ctx, jobID)
		if err != nil {
			return "", fmt.Errorf("poll job %s: %w", jobID, err)
		}

		switch status.State {
		case StateSuccess:
			return c.FetchResult(ctx, jobID)
		case StateError:
			return "", fmt.Errorf("job %s failed: %s", jobID, status.Message)
		}
	}
	return "", fmt.Errorf("job %s timed out after %d poll attempts", jobID, maxAttempts)
}
