package sqsconsumer

import (
	"errors"
	"time"
)

// Option is a functional option for configuring a [Client].
// Options are passed to [New] and applied before [Client.Init] is called.
type Option func(*Options)

// Options holds the resolved configuration for a [Client].
// All fields are set to sensible defaults by [New]; use With* functions to
// override individual values.
type Options struct {
	visibilityTimeoutSeconds int32
	receiveMaxMessages       int32
	receiveWaitTimeSeconds   int32
	apiMaxRetryAttempts      int
	apiMaxRetryBackoffDelay  time.Duration
	sqsClient                sqsAPI // Optional: injected SQS client for testing
}

func newOptions() *Options {
	return &Options{
		visibilityTimeoutSeconds: 30,
		receiveMaxMessages:       10,
		receiveWaitTimeSeconds:   20,
		apiMaxRetryAttempts:      5,
		apiMaxRetryBackoffDelay:  10 * time.Second,
	}
}

func (o *Options) validate() error {
	if o.visibilityTimeoutSeconds < 10 || o.visibilityTimeoutSeconds > 3600 {
		return errors.New("message visibility timeout must be between 10 seconds and 1 hour")
	}

	if o.receiveMaxMessages < 1 || o.receiveMaxMessages > 10 {
		return errors.New("max number of messages per receive must be between 1 and 10")
	}

	if o.receiveWaitTimeSeconds < 1 || o.receiveWaitTimeSeconds > 20 {
		return errors.New("receive wait time must be between 1 and 20 seconds")
	}

	if o.apiMaxRetryAttempts < 0 || o.apiMaxRetryAttempts > 10 {
		return errors.New("max SQS API retry attempts must be between 0 and 10")
	}

	if o.apiMaxRetryBackoffDelay < 1*time.Second || o.apiMaxRetryBackoffDelay > 30*time.Second {
		return errors.New("max SQS API retry backoff delay must be between 1 and 30 seconds")
	}

	return nil
}

// WithVisibilityTimeout sets the visibility timeout applied to each received
// message: the window during which the message is hidden from other
// consumers and must be processed and deleted to avoid redelivery.
// Must be between 10 and 3600 seconds. Default: 30.
func WithVisibilityTimeout(seconds int32) Option {
	return func(o *Options) {
		o.visibilityTimeoutSeconds = seconds
	}
}

// WithReceiveMaxMessages sets the maximum number of messages returned by a
// single ReceiveMessage API call. Must be between 1 and 10 (the SQS per-call
// ceiling). Default: 10.
func WithReceiveMaxMessages(n int32) Option {
	return func(o *Options) {
		o.receiveMaxMessages = n
	}
}

// WithReceiveWaitTimeSeconds sets the long-poll wait duration for each
// ReceiveMessage API call. Longer values reduce empty responses and API
// costs. Must be between 1 and 20 seconds. Default: 20.
func WithReceiveWaitTimeSeconds(seconds int32) Option {
	return func(o *Options) {
		o.receiveWaitTimeSeconds = seconds
	}
}

// WithAPIMaxRetryAttempts sets the maximum number of retry attempts for
// failed SQS API calls. Must be between 0 and 10. Default: 5.
func WithAPIMaxRetryAttempts(n int) Option {
	return func(o *Options) {
		o.apiMaxRetryAttempts = n
	}
}

// WithAPIMaxRetryBackoffDelay sets the maximum backoff delay between
// consecutive SQS API retry attempts. Must be between 1 second and 30
// seconds. Default: 10 seconds.
func WithAPIMaxRetryBackoffDelay(d time.Duration) Option {
	return func(o *Options) {
		o.apiMaxRetryBackoffDelay = d
	}
}

// WithSQSClient replaces the default AWS SQS client with a custom
// implementation of the internal sqsAPI interface. This option is intended
// for testing with mock or stub clients.
func WithSQSClient(client sqsAPI) Option {
	return func(o *Options) {
		o.sqsClient = client
	}
}
