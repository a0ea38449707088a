package sqsconsumer

import (
	"context"
	"encoding/json"
)

// Handler processes a single decoded message. Implementations are supplied
// to [NewEngine] and invoked once per received message.
//
// body is the message body decoded as a top-level JSON object; msg carries
// the raw body and metadata for implementations that need them.
//
// The return value decides the message's fate:
//   - (true, nil): processed; the engine deletes the message.
//   - (false, nil): declined by business logic; the message is left in the
//     queue and redelivered after the visibility timeout.
//   - (_, err): processing failed; the message is left in the queue.
//
// Handlers must be idempotent: delivery is at least once, and a handler that
// runs longer than the visibility timeout risks a duplicate delivery while
// the first attempt is still in progress.
type Handler interface {
	Handle(ctx context.Context, msg *Message, body map[string]any) (bool, error)
}

// HandlerFunc adapts an ordinary function into a [Handler].
type HandlerFunc func(ctx context.Context, msg *Message, body map[string]any) (bool, error)

func (f HandlerFunc) Handle(ctx context.Context, msg *Message, body map[string]any) (bool, error) {
	return f(ctx, msg, body)
}

// TypedHandler adapts a typed function into a [Handler]. It unmarshals the
// raw message body into T and calls HandleFunc with the result. A body that
// reached a TypedHandler has already been verified to be a JSON object, so
// the second decode fails only when the object does not fit T; such failures
// are treated as handler failures, not as malformed messages.
type TypedHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) (bool, error)
}

func (h TypedHandler[T]) Handle(ctx context.Context, msg *Message, _ map[string]any) (bool, error) {
	var v T
	if err := json.Unmarshal([]byte(msg.Body), &v); err != nil {
		return false, err
	}

	return h.HandleFunc(ctx, v)
}
