package dataflow

import (
	"time"
)

// Option configures a ForEach run.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    func(int) time.Duration
	// retryable reports whether a failed attempt may be retried. Nil retries
	// every error.
	retryable func(error) bool
}

func defaultConfig() *config {
	return &config{workers: 1}
}

// WithWorkers sets the number of concurrent workers.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRetry retries a failed item up to maxRetries times, sleeping
// backoff(attempt) before each retry.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		c.backoff = backoff
	}
}

// WithRetryIf limits retries to errors accepted by fn.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *config) {
		c.retryable = fn
	}
}

// LinearBackoff waits step, 2*step, 3*step...
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}
