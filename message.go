package sqsconsumer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is a single message received from the queue. It is immutable once
// received. The consumer owns it for the duration of one processing attempt;
// ownership ends when the message is deleted or, if it is not deleted, when
// its visibility timeout expires and the queue makes it receivable again.
type Message struct {
	// ID is the SQS message ID, used for logging and diagnostics.
	ID string

	// ReceiptHandle identifies this delivery of the message and is required
	// to delete it. A handle becomes invalid once the visibility timeout
	// expires or the message is deleted.
	ReceiptHandle string

	// Body is the raw message body. It is expected, but not guaranteed, to
	// be a JSON object.
	Body string

	// Attributes holds the message's SQS system attributes, such as
	// MessageGroupId on FIFO queues.
	Attributes map[string]string

	// ReceiveTimestamp is when this consumer received the message.
	ReceiveTimestamp time.Time
}

// decodeBody decodes the message body as a top-level JSON object. Bodies
// that decode to arrays, scalars or invalid JSON are rejected with a
// *MalformedMessageError.
func (m *Message) decodeBody() (map[string]any, error) {
	var body map[string]any

	if err := json.Unmarshal([]byte(m.Body), &body); err != nil {
		return nil, &MalformedMessageError{MessageID: m.ID, Err: err}
	}

	if body == nil {
		return nil, &MalformedMessageError{MessageID: m.ID, Err: fmt.Errorf("body is JSON null")}
	}

	return body, nil
}

// truncateBody returns at most limit bytes of the message body for log
// context, appending an ellipsis when the body was cut.
func truncateBody(body string, limit int) string {
	if len(body) <= limit {
		return body
	}

	return body[:limit] + "..."
}
