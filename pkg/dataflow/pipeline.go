package dataflow

import (
	"context"
	"sync"
	"time"
)

// ForEach calls fn for every item on a pool of workers. The first error
// cancels the context handed to the remaining calls and is returned once
// all workers have stopped. Items are handed out in slice order.
func ForEach[T any](ctx context.Context, items []T, fn func(ctx context.Context, i int, item T) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if len(items) == 0 {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			if err := cfg.run(ctx, func(ctx context.Context) error { return fn(ctx, i, items[i]) }); err != nil {
				fail(err)
				return
			}
		}
	}

	workers := min(cfg.workers, len(items))
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// run executes one item with the configured retries.
func (c *config) run(ctx context.Context, call func(context.Context) error) error {
	err := call(ctx)
	for attempt := 1; err != nil && attempt <= c.maxRetries; attempt++ {
		if c.retryable != nil && !c.retryable(err) {
			return err
		}
		if c.backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}
		err = call(ctx)
	}
	return err
}
