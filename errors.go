package sqsconsumer

import "fmt"

// TransportError wraps a failure of an SQS operation (receive, delete, send
// or attribute query). It is non-fatal to the consumption loop: the [Engine]
// absorbs it, logs it, and retries after a backoff (receive) or leaves the
// message for redelivery (delete).
type TransportError struct {
	// Op identifies the failed operation: "receive", "delete", "send" or
	// "query_attributes".
	Op string

	// Err is the underlying AWS SDK error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sqs %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedMessageError reports a message body that did not decode as a
// top-level JSON object. Such poison messages are never dispatched to the
// handler and never deleted; they remain in the queue for inspection.
type MalformedMessageError struct {
	// MessageID is the SQS message ID of the poison message.
	MessageID string

	// Err is the underlying decode error.
	Err error
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message body for message %s: %v", e.MessageID, e.Err)
}

func (e *MalformedMessageError) Unwrap() error {
	return e.Err
}
