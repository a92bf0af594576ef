package api

import (
	"context"
	"sync"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Reply is returned by Send unless ReplyFunc is set
	Reply string
	Err   error
	// ReplyFunc computes the reply from the message when set
	ReplyFunc func(ctx context.Context, message string) (string, error)
	BaseURL   string

	mu          sync.Mutex
	messages    []string
	closeCalled bool
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) Send(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	fn := m.ReplyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	return m.Reply, m.Err
}

func (m *MockChatClient) URL() string {
	if m.BaseURL == "" {
		return "http://mock/api/chat"
	}
	return m.BaseURL + "/api/chat"
}

func (m *MockChatClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
}

// Messages returns every message passed to Send, in order
func (m *MockChatClient) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// CloseCalled reports whether Close was invoked
func (m *MockChatClient) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}
