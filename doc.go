// Package sqsconsumer provides an at-least-once SQS consumption loop for the
// Slack Manager ecosystem. It long-polls a queue (standard or FIFO), decodes
// each message body as a JSON object, dispatches it to a caller-supplied
// [Handler], deletes the message on success, and leaves failed or unprocessed
// messages in the queue for redelivery after the visibility timeout expires.
//
// # Client
//
// [Client] wraps the SQS operations the loop needs: batched long-poll
// receive, per-message delete, approximate-count attribute queries, and the
// [Client.Send]/[Client.SendFIFO] producer helpers. Create a Client with
// [New], then call [Client.Init] once before any other method:
//
//	client, err := sqsconsumer.New(&awsCfg, "jobs", logger,
//	    sqsconsumer.WithVisibilityTimeout(60),
//	).Init(ctx)
//
// Receive failures, delete failures, and attribute-query failures surface as
// [*TransportError] values; an empty receive is not an error.
//
// # Engine
//
// [Engine] owns the poll/dispatch/acknowledge loop. Build one with
// [NewEngine], supplying the Client and a [Handler], then call [Engine.Run]:
//
//	engine, err := sqsconsumer.NewEngine(client, handler, logger)
//	if err != nil {
//	    return err
//	}
//
//	go func() {
//	    <-sigCh // SIGTERM etc.
//	    engine.RequestShutdown()
//	}()
//
//	err = engine.Run(ctx)
//
// Run blocks until [Engine.RequestShutdown] is called or ctx is cancelled.
// Shutdown is graceful: the engine issues no further receives, abandons the
// not-yet-dispatched remainder of the current batch (those messages become
// visible again after their timeout), and never interrupts a handler that is
// already processing a message.
//
// # Message contract
//
// Delivery is at least once. A handler may see the same message more than
// once (after a delete that failed transiently, after a visibility timeout
// that expired mid-processing, or after redelivery of a message an earlier
// attempt declined) and must therefore be idempotent. The engine documents
// this contract; it does not enforce it.
//
// The engine decodes each body exactly once, as a top-level JSON object, and
// passes the result to the handler. It does not unwrap SNS envelopes; when a
// queue is subscribed to an SNS topic with raw delivery disabled, the handler
// receives the envelope object and unwraps the nested "Message" field itself.
// A body that does not decode as a JSON object is a poison message: it is
// never dispatched and never deleted, so it stays in the queue for inspection
// (or for the queue's own dead-letter policy).
//
// # Failure policy
//
// No failure stops the loop except explicit shutdown. A receive failure is
// logged and followed by the longer error backoff before the next poll; an
// empty receive is followed by the short idle delay. A handler that returns
// false, returns an error, or panics only affects its own message, which is
// left in the queue. A delete failure is logged and absorbed; the message
// will simply be redelivered, which the idempotent-handler contract makes
// safe.
//
// # Configuration
//
// Both [Client] and [Engine] accept functional options applied at
// construction. See the With* functions for available settings and their
// defaults.
package sqsconsumer
