package sqsconsumer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/slackmgr/types"
)

// queueDepthAttributes are the approximate-count attributes returned by
// [Client.QueryAttributes].
var queueDepthAttributes = []sqstypes.QueueAttributeName{
	sqstypes.QueueAttributeNameApproximateNumberOfMessages,
	sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
	sqstypes.QueueAttributeNameApproximateNumberOfMessagesDelayed,
}

// Client wraps the SQS operations the consumption loop needs: batched
// long-poll receive, per-message delete, approximate-count attribute queries,
// and the Send/SendFIFO producer helpers. Both standard and FIFO queues are
// supported.
//
// Create a Client with [New], then call [Client.Init] once before any other
// method. Init is not thread-safe; all other methods are safe for concurrent
// use after Init returns.
type Client struct {
	client      sqsAPI
	queueName   string
	queueURL    string
	awsCfg      *aws.Config
	opts        *Options
	logger      types.Logger
	initialized bool
}

// New creates a Client configured to consume from the named SQS queue.
//
// Functional options may be passed to override defaults (see With* functions).
// The logger is automatically enriched with "plugin" and "queue_name" fields.
//
// New does not connect to AWS. Call [Client.Init] to validate the
// configuration and resolve the queue URL.
func New(awsCfg *aws.Config, queueName string, logger types.Logger, opts ...Option) *Client {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	logger = logger.
		WithField("plugin", "sqsconsumer").
		WithField("queue_name", queueName)

	return &Client{
		awsCfg:    awsCfg,
		queueName: queueName,
		opts:      options,
		logger:    logger,
	}
}

// Init initializes the Client: validates the queue name and options, then
// resolves the queue URL via GetQueueUrl. It returns the receiver so that
// initialization can be chained with [New]:
//
//	client, err := sqsconsumer.New(&awsCfg, "jobs", logger).Init(ctx)
//
// A missing queue name or an invalid option is a configuration error and
// fails Init before any loop can start.
//
// Init is idempotent; subsequent calls on an already-initialized Client are
// no-ops. It is not thread-safe and must be called once during application
// startup before any concurrent access.
func (c *Client) Init(ctx context.Context) (*Client, error) {
	if c.initialized {
		return c, nil
	}

	if c.queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	if err := c.opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid SQS consumer options: %w", err)
	}

	// Use injected client if provided (for testing), otherwise create real client
	if c.opts.sqsClient != nil {
		c.client = c.opts.sqsClient
	} else {
		c.client = sqs.NewFromConfig(*c.awsCfg, func(o *sqs.Options) {
			o.Retryer = retry.AddWithMaxBackoffDelay(o.Retryer, c.opts.apiMaxRetryBackoffDelay)
			o.Retryer = retry.AddWithMaxAttempts(o.Retryer, c.opts.apiMaxRetryAttempts)
		})
	}

	resp, err := c.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(c.queueName)})
	if err != nil {
		return nil, fmt.Errorf("failed to get SQS queue URL for %s: %w", c.queueName, err)
	}

	c.queueURL = aws.ToString(resp.QueueUrl)

	c.initialized = true

	return c, nil
}

// Name returns the SQS queue name supplied to [New].
func (c *Client) Name() string {
	return c.queueName
}

// IsFIFO reports whether the consumed queue is a FIFO queue, detected from
// the ".fifo" queue name suffix.
func (c *Client) IsFIFO() bool {
	return strings.HasSuffix(c.queueName, ".fifo")
}

// Receive performs one long-poll ReceiveMessage call and returns the
// resulting batch in receipt order. It blocks up to the configured wait time
// and returns an empty batch, not an error, when the queue had no messages.
//
// Failures surface as a [*TransportError]. Receive requires [Client.Init] to
// have been called successfully.
func (c *Client) Receive(ctx context.Context) ([]Message, error) {
	if !c.initialized {
		return nil, errors.New("SQS consumer client not initialized")
	}

	input := &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: c.opts.receiveMaxMessages,
		VisibilityTimeout:   c.opts.visibilityTimeoutSeconds,
		WaitTimeSeconds:     c.opts.receiveWaitTimeSeconds,
		MessageSystemAttributeNames: []sqstypes.MessageSystemAttributeName{
			sqstypes.MessageSystemAttributeNameAll,
		},
	}

	output, err := c.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, &TransportError{Op: "receive", Err: err}
	}

	now := time.Now()

	batch := make([]Message, 0, len(output.Messages))

	for _, m := range output.Messages {
		batch = append(batch, Message{
			ID:               aws.ToString(m.MessageId),
			ReceiptHandle:    aws.ToString(m.ReceiptHandle),
			Body:             aws.ToString(m.Body),
			Attributes:       m.Attributes,
			ReceiveTimestamp: now,
		})
	}

	return batch, nil
}

// Delete removes msg from the queue, acknowledging successful processing.
//
// Delete is idempotent from the caller's perspective: deleting a message
// whose receipt handle has already been consumed or has expired fails with a
// [*TransportError], but the message is already gone from the consumer's
// concern and the caller is expected to absorb the error (the [Engine] logs
// it and moves on). Delete requires [Client.Init] to have been called
// successfully.
func (c *Client) Delete(ctx context.Context, msg Message) error {
	if !c.initialized {
		return errors.New("SQS consumer client not initialized")
	}

	input := &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	}

	if _, err := c.client.DeleteMessage(ctx, input); err != nil {
		return &TransportError{Op: "delete", Err: err}
	}

	c.logger.WithField("message_id", msg.ID).Debug("SQS message deleted")

	return nil
}

// QueryAttributes returns the queue's approximate message counts: visible,
// not visible (in flight) and delayed. It is a best-effort diagnostic;
// failures surface as a [*TransportError] and are non-fatal to the loop.
// QueryAttributes requires [Client.Init] to have been called successfully.
func (c *Client) QueryAttributes(ctx context.Context) (map[string]int, error) {
	if !c.initialized {
		return nil, errors.New("SQS consumer client not initialized")
	}

	input := &sqs.GetQueueAttributesInput{
		QueueUrl:       &c.queueURL,
		AttributeNames: queueDepthAttributes,
	}

	output, err := c.client.GetQueueAttributes(ctx, input)
	if err != nil {
		return nil, &TransportError{Op: "query_attributes", Err: err}
	}

	counts := make(map[string]int, len(output.Attributes))

	for name, value := range output.Attributes {
		n, err := strconv.Atoi(value)
		if err != nil {
			// Non-numeric attributes are skipped; the counts are best-effort.
			continue
		}

		counts[name] = n
	}

	return counts, nil
}

// Send publishes a single message to a standard queue. Use [Client.SendFIFO]
// for FIFO queues, which require a group and deduplication ID.
//
// Send requires [Client.Init] to have been called successfully.
func (c *Client) Send(ctx context.Context, body string) error {
	if !c.initialized {
		return errors.New("SQS consumer client not initialized")
	}

	if c.IsFIFO() {
		return errors.New("queue is a FIFO queue, use SendFIFO")
	}

	if body == "" {
		return errors.New("body cannot be empty")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    &c.queueURL,
		MessageBody: &body,
	}

	if _, err := c.client.SendMessage(ctx, input); err != nil {
		return &TransportError{Op: "send", Err: err}
	}

	return nil
}

// SendFIFO publishes a single message to a FIFO queue.
//
// groupID is used as the SQS MessageGroupId, which determines message
// ordering within the queue. dedupID is used as the SQS
// MessageDeduplicationId; SQS will silently discard messages with a
// duplicate ID within the 5-minute deduplication window. Both fields are
// required and must be non-empty.
//
// SendFIFO requires [Client.Init] to have been called successfully.
func (c *Client) SendFIFO(ctx context.Context, groupID, dedupID, body string) error {
	if !c.initialized {
		return errors.New("SQS consumer client not initialized")
	}

	if !c.IsFIFO() {
		return errors.New("queue is not a FIFO queue, use Send")
	}

	if groupID == "" {
		return errors.New("groupID cannot be empty")
	}

	if dedupID == "" {
		return errors.New("dedupID cannot be empty")
	}

	if body == "" {
		return errors.New("body cannot be empty")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:               &c.queueURL,
		MessageGroupId:         &groupID,
		MessageDeduplicationId: &dedupID,
		MessageBody:            &body,
	}

	if _, err := c.client.SendMessage(ctx, input); err != nil {
		return &TransportError{Op: "send", Err: err}
	}

	return nil
}
