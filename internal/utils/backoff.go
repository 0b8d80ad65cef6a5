package utils

import (
	"context"
	"time"
)

// BackoffManager manages exponential backoff between retries
type BackoffManager struct {
	currentInterval time.Duration
	maxInterval     time.Duration
	initialInterval time.Duration
}

// NewBackoffManager initializes a new BackoffManager with the given intervals.
func NewBackoffManager(initialInterval, maxInterval time.Duration) *BackoffManager {
	return &BackoffManager{
		currentInterval: initialInterval,
		maxInterval:     maxInterval,
		initialInterval: initialInterval,
	}
}

// GetInterval returns the current interval
func (b *BackoffManager) GetInterval() time.Duration {
	return b.currentInterval
}

// IncreaseInterval doubles the current interval up to maxInterval
func (b *BackoffManager) IncreaseInterval() {
	b.currentInterval = min(b.currentInterval*2, b.maxInterval)
}

// ResetInterval resets the interval back to the initial value
func (b *BackoffManager) ResetInterval() {
	b.currentInterval = b.initialInterval
}

// Retry calls fn up to attempts times, waiting the backoff interval between failures.
// It returns nil on the first success, otherwise the last error or ctx.Err() if ctx is
// done while waiting.
func Retry(ctx context.Context, attempts int, b *BackoffManager, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			b.ResetInterval()
			return nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(b.GetInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		b.IncreaseInterval()
	}
	return err
}
