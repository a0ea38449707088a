//nolint:testpackage // Mocks must be in the sqsconsumer package to access unexported types
package sqsconsumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/slackmgr/types"
)

// mockSQSClient is a mock implementation of the sqsAPI interface for testing.
type mockSQSClient struct {
	getQueueUrlFunc        func(ctx context.Context, input *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	receiveMessageFunc     func(ctx context.Context, input *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc      func(ctx context.Context, input *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	sendMessageFunc        func(ctx context.Context, input *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	getQueueAttributesFunc func(ctx context.Context, input *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

func (m *mockSQSClient) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if m.getQueueUrlFunc != nil {
		return m.getQueueUrlFunc(ctx, params, optFns...)
	}
	return &sqs.GetQueueUrlOutput{}, nil
}

func (m *mockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{}, nil
}

func (m *mockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

func (m *mockSQSClient) GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if m.getQueueAttributesFunc != nil {
		return m.getQueueAttributesFunc(ctx, params, optFns...)
	}
	return &sqs.GetQueueAttributesOutput{}, nil
}

// fakeQueue is a func-field fake of the queueConsumer interface for engine
// tests.
type fakeQueue struct {
	receiveFunc func(ctx context.Context) ([]Message, error)
	deleteFunc  func(ctx context.Context, msg Message) error
	queryFunc   func(ctx context.Context) (map[string]int, error)
}

func (q *fakeQueue) Receive(ctx context.Context) ([]Message, error) {
	if q.receiveFunc != nil {
		return q.receiveFunc(ctx)
	}
	return nil, nil
}

func (q *fakeQueue) Delete(ctx context.Context, msg Message) error {
	if q.deleteFunc != nil {
		return q.deleteFunc(ctx, msg)
	}
	return nil
}

func (q *fakeQueue) QueryAttributes(ctx context.Context) (map[string]int, error) {
	if q.queryFunc != nil {
		return q.queryFunc(ctx)
	}
	return map[string]int{}, nil
}

// mockLogger is a no-op logger for testing.
type mockLogger struct{}

//nolint:ireturn // Must return interface to implement types.Logger
func (m *mockLogger) WithField(_ string, _ any) types.Logger { return m }

//nolint:ireturn // Must return interface to implement types.Logger
func (m *mockLogger) WithFields(_ map[string]any) types.Logger { return m }
func (m *mockLogger) Debug(_ string)                           {}
func (m *mockLogger) Debugf(_ string, _ ...any)                {}
func (m *mockLogger) Info(_ string)                            {}
func (m *mockLogger) Infof(_ string, _ ...any)                 {}
func (m *mockLogger) Warn(_ string)                            {}
func (m *mockLogger) Warnf(_ string, _ ...any)                 {}
func (m *mockLogger) Error(_ string)                           {}
func (m *mockLogger) Errorf(_ string, _ ...any)                {}
func (m *mockLogger) Fatal(_ string)                           {}
func (m *mockLogger) Fatalf(_ string, _ ...any)                {}

//nolint:ireturn // Returns interface for convenience in tests
func newMockLogger() types.Logger {
	return &mockLogger{}
}

// recordingLogger captures leveled log output so tests can assert on it.
// It is safe for concurrent use.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
	infos  []string
}

//nolint:ireturn // Must return interface to implement types.Logger
func (l *recordingLogger) WithField(_ string, _ any) types.Logger { return l }

//nolint:ireturn // Must return interface to implement types.Logger
func (l *recordingLogger) WithFields(_ map[string]any) types.Logger { return l }

func (l *recordingLogger) Debug(_ string)            {}
func (l *recordingLogger) Debugf(_ string, _ ...any) {}

func (l *recordingLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Fatal(msg string)                  { l.Error(msg) }
func (l *recordingLogger) Fatalf(format string, args ...any) { l.Errorf(format, args...) }

func (l *recordingLogger) errorEntries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.errors))
	copy(out, l.errors)

	return out
}

func (l *recordingLogger) warnEntries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.warns))
	copy(out, l.warns)

	return out
}

func (l *recordingLogger) infoEntries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.infos))
	copy(out, l.infos)

	return out
}
