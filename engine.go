package sqsconsumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slackmgr/types"
	"golang.org/x/sync/semaphore"
)

// maxLoggedBodyBytes caps how much of a message body is attached to error
// log entries.
const maxLoggedBodyBytes = 256

// Engine runs the poll/dispatch/acknowledge loop over a queue [Client].
// Each iteration receives a batch, dispatches every message to the
// configured [Handler], deletes the messages the handler processed, and
// leaves all others in the queue for redelivery.
//
// One Engine runs one loop. The loop degrades to periodic retrying under
// sustained queue failure and stops only on [Engine.RequestShutdown] or
// context cancellation; no message-level or transport-level failure
// terminates it.
//
// Create an Engine with [NewEngine] and start it with [Engine.Run].
// RequestShutdown and IsShutdownRequested are safe for concurrent use.
type Engine struct {
	queue        queueConsumer
	handler      Handler
	logger       types.Logger
	opts         *EngineOptions
	shutdown     atomic.Bool
	lastDepthLog time.Time
}

// NewEngine creates an Engine that consumes from queue and dispatches to
// handler. The queue client must already be initialized (see [Client.Init]).
//
// Functional options may be passed to override defaults (see the
// [EngineOption] functions). A nil queue, nil handler, nil logger or invalid
// option is a configuration error and fails construction immediately.
func NewEngine(queue *Client, handler Handler, logger types.Logger, opts ...EngineOption) (*Engine, error) {
	if queue == nil {
		return nil, errors.New("queue client cannot be nil")
	}

	return newEngine(queue, handler, logger, opts...)
}

// newEngine is the interface-typed constructor shared with tests, which
// substitute a fake queueConsumer.
func newEngine(queue queueConsumer, handler Handler, logger types.Logger, opts ...EngineOption) (*Engine, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	options := newEngineOptions()

	for _, o := range opts {
		o(options)
	}

	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}

	return &Engine{
		queue:   queue,
		handler: handler,
		logger:  logger,
		opts:    options,
	}, nil
}

// RequestShutdown asks the engine to stop. The flag transitions false to
// true exactly once and is never reset. The engine issues no further receive
// calls and dispatches no further messages from the current batch, but a
// message whose handler is already running is processed (and acknowledged)
// to completion. RequestShutdown may be called from any goroutine, before or
// during [Engine.Run], and is a no-op when repeated.
func (e *Engine) RequestShutdown() {
	if e.shutdown.CompareAndSwap(false, true) {
		e.logger.Info("Engine shutdown requested")
	}
}

// IsShutdownRequested reports whether [Engine.RequestShutdown] has been
// called.
func (e *Engine) IsShutdownRequested() bool {
	return e.shutdown.Load()
}

// Run executes the consumption loop until [Engine.RequestShutdown] is called
// or ctx is cancelled. It returns nil on requested shutdown and ctx.Err() on
// cancellation.
//
// Receive failures are logged and followed by the error backoff; empty
// batches are followed by the shorter poll idle delay. Handler failures are
// isolated per message and never abort the batch or the loop.
//
// Run must not be called concurrently on the same Engine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.WithFields(map[string]any{
		"poll_idle_delay":      e.opts.pollIdleDelay.String(),
		"error_backoff":        e.opts.errorBackoff.String(),
		"dispatch_concurrency": e.opts.dispatchConcurrency,
	}).Info("Consumption loop started")

	defer e.logger.Info("Consumption loop stopped")

	for {
		if e.IsShutdownRequested() {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		e.maybeLogQueueDepth(ctx)

		batch, err := e.queue.Receive(ctx)
		if err != nil {
			// If the context was cancelled, return without logging an error
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// The backoff prevents hammering the SQS API (and excessive
			// logging) in case of persistent errors
			e.logger.Errorf("Failed to receive messages, backing off: %v", err)

			if err := e.sleep(ctx, e.opts.errorBackoff); err != nil {
				return err
			}

			continue
		}

		if len(batch) == 0 {
			e.logger.Debug("Receive returned no messages")

			if err := e.sleep(ctx, e.opts.pollIdleDelay); err != nil {
				return err
			}

			continue
		}

		e.logger.WithField("batch_size", len(batch)).Debug("Batch received")

		e.dispatch(ctx, batch)
	}
}

// dispatch hands the batch's messages to the handler, re-checking the
// shutdown flag before each message. Messages not yet dispatched when
// shutdown is requested are abandoned untouched; the queue redelivers them
// after the visibility timeout.
func (e *Engine) dispatch(ctx context.Context, batch []Message) {
	if e.opts.dispatchConcurrency == 1 {
		for i := range batch {
			if e.abandonRemaining(len(batch) - i) {
				return
			}

			e.process(ctx, &batch[i])
		}

		return
	}

	sem := semaphore.NewWeighted(int64(e.opts.dispatchConcurrency))
	wg := sync.WaitGroup{}

	for i := range batch {
		if e.abandonRemaining(len(batch) - i) {
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled; in-flight messages still run to completion.
			break
		}

		msg := &batch[i]

		wg.Go(func() {
			defer sem.Release(1)

			e.process(ctx, msg)
		})
	}

	wg.Wait()
}

// abandonRemaining reports whether shutdown has been requested, logging the
// number of batch messages being left for redelivery when it has.
func (e *Engine) abandonRemaining(remaining int) bool {
	if !e.IsShutdownRequested() {
		return false
	}

	e.logger.WithField("abandoned", remaining).Info("Shutdown requested, leaving remaining batch messages for redelivery")

	return true
}

// process runs one message through decode, handler and acknowledgement.
// Every failure is absorbed here: one message's outcome never affects its
// batch neighbours or the loop.
func (e *Engine) process(ctx context.Context, msg *Message) {
	logger := e.logger.WithField("message_id", msg.ID)

	body, err := msg.decodeBody()
	if err != nil {
		// Poison message: held in the queue for inspection, never dispatched.
		logger.WithField("body", truncateBody(msg.Body, maxLoggedBodyBytes)).Errorf("Leaving malformed message in queue: %v", err)
		return
	}

	processed, err := e.invokeHandler(ctx, msg, body)
	if err != nil {
		logger.WithField("body", truncateBody(msg.Body, maxLoggedBodyBytes)).Errorf("Handler failed, leaving message for redelivery: %v", err)
		return
	}

	if !processed {
		logger.Warn("Handler declined message, leaving it for redelivery")
		return
	}

	// The acknowledgement must complete regardless of the caller's context
	// state, so it runs on a detached context with its own timeout.
	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.deleteTimeout)
	defer cancel()

	if err := e.queue.Delete(deleteCtx, *msg); err != nil {
		logger.Errorf("Failed to delete processed message, it will be redelivered: %v", err)
		return
	}

	logger.Debug("Message processed and acknowledged")
}

// invokeHandler calls the handler with panic recovery. A panicking handler
// is equivalent to one returning an error: the message stays in the queue.
func (e *Engine) invokeHandler(ctx context.Context, msg *Message, body map[string]any) (processed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			processed = false
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return e.handler.Handle(ctx, msg, body)
}

// maybeLogQueueDepth logs a best-effort snapshot of the queue's approximate
// message counts, at most once per configured interval. Query failures are
// logged at warn level and otherwise ignored.
func (e *Engine) maybeLogQueueDepth(ctx context.Context) {
	if e.opts.queueDepthLogInterval == 0 {
		return
	}

	if time.Since(e.lastDepthLog) < e.opts.queueDepthLogInterval {
		return
	}

	e.lastDepthLog = time.Now()

	counts, err := e.queue.QueryAttributes(ctx)
	if err != nil {
		e.logger.Warnf("Failed to query queue attributes: %v", err)
		return
	}

	fields := make(map[string]any, len(counts))

	for name, count := range counts {
		fields[name] = count
	}

	e.logger.WithFields(fields).Info("Queue depth snapshot")
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
