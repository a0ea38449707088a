package sqsconsumer

import (
	"errors"
	"time"
)

// EngineOption is a functional option for configuring an [Engine].
// Options are passed to [NewEngine] and applied before validation.
type EngineOption func(*EngineOptions)

// EngineOptions holds the resolved configuration for an [Engine].
// All fields are set to sensible defaults by [NewEngine]; use With*
// functions to override individual values.
type EngineOptions struct {
	pollIdleDelay         time.Duration
	errorBackoff          time.Duration
	dispatchConcurrency   int
	deleteTimeout         time.Duration
	queueDepthLogInterval time.Duration
}

func newEngineOptions() *EngineOptions {
	return &EngineOptions{
		pollIdleDelay:         1 * time.Second,
		errorBackoff:          5 * time.Second,
		dispatchConcurrency:   1,
		deleteTimeout:         2 * time.Second,
		queueDepthLogInterval: 1 * time.Minute,
	}
}

func (o *EngineOptions) validate() error {
	if o.pollIdleDelay < 0 || o.pollIdleDelay > 1*time.Minute {
		return errors.New("poll idle delay must be between 0 and 1 minute")
	}

	if o.errorBackoff <= o.pollIdleDelay {
		return errors.New("error backoff must be longer than the poll idle delay")
	}

	if o.errorBackoff > 5*time.Minute {
		return errors.New("error backoff must not exceed 5 minutes")
	}

	if o.dispatchConcurrency < 1 || o.dispatchConcurrency > 100 {
		return errors.New("dispatch concurrency must be between 1 and 100")
	}

	if o.deleteTimeout < 1*time.Second || o.deleteTimeout > 30*time.Second {
		return errors.New("delete timeout must be between 1 and 30 seconds")
	}

	if o.queueDepthLogInterval < 0 {
		return errors.New("queue depth log interval must not be negative")
	}

	return nil
}

// WithPollIdleDelay sets the short delay inserted after a receive call that
// returned no messages, avoiding a tight empty-receive loop when the queue's
// long-poll wait is configured low. Must be between 0 (no delay) and 1
// minute, and shorter than the error backoff. Default: 1 second.
func WithPollIdleDelay(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		o.pollIdleDelay = d
	}
}

// WithErrorBackoff sets the delay inserted after a failed receive call
// before the next poll attempt, preventing a hot error loop against a
// failing queue. Must be longer than the poll idle delay and at most 5
// minutes. Default: 5 seconds.
func WithErrorBackoff(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		o.errorBackoff = d
	}
}

// WithDispatchConcurrency sets the number of messages from one batch the
// engine may dispatch to the handler concurrently. At the default of 1 the
// batch is dispatched sequentially in receipt order; higher values dispatch
// in parallel, which forfeits receipt-order processing within a batch. The
// per-message isolation and shutdown semantics are identical in both modes.
// Must be between 1 and 100. Default: 1.
func WithDispatchConcurrency(n int) EngineOption {
	return func(o *EngineOptions) {
		o.dispatchConcurrency = n
	}
}

// WithDeleteTimeout sets the timeout for the DeleteMessage call that
// acknowledges a processed message. Deletes run on a detached context so an
// in-flight acknowledgement completes even while the engine is shutting
// down. Must be between 1 and 30 seconds. Default: 2 seconds.
func WithDeleteTimeout(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		o.deleteTimeout = d
	}
}

// WithQueueDepthLogInterval sets how often the engine logs a snapshot of the
// queue's approximate message counts. A zero interval disables the snapshot.
// Default: 1 minute.
func WithQueueDepthLogInterval(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		o.queueDepthLogInterval = d
	}
}
