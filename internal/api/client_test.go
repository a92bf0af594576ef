package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// mockHTTPClient records the last request and returns a canned response
type mockHTTPClient struct {
	status   int
	body     string
	err      error
	lastReq  *http.Request
	lastBody []byte
	doFunc   func(req *http.Request) (*http.Response, error)
	calls    int
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(t *testing.T, doer HTTPDoer, opts ...ClientOption) *ChatClient {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(doer), WithBaseURL("http://backend.test")}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		opts        []ClientOption
		wantURL     string
		wantTimeout time.Duration
		wantErr     bool
	}{
		{
			name:        "defaults",
			opts:        []ClientOption{WithHTTPClient(&mockHTTPClient{})},
			wantURL:     "http://localhost:8080/api/chat",
			wantTimeout: 300 * time.Second,
		},
		{
			name: "custom base and endpoint",
			opts: []ClientOption{
				WithHTTPClient(&mockHTTPClient{}),
				WithBaseURL("https://chat.example.com/"),
				WithEndpoint("v2/chat"),
				WithTimeout(5 * time.Second),
			},
			wantURL:     "https://chat.example.com/v2/chat",
			wantTimeout: 5 * time.Second,
		},
		{
			name:    "empty base url",
			opts:    []ClientOption{WithHTTPClient(&mockHTTPClient{}), WithBaseURL("")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := client.URL(); got != tt.wantURL {
				t.Errorf("URL() = %s, want %s", got, tt.wantURL)
			}
			if got := client.Timeout(); got != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", got, tt.wantTimeout)
			}
		})
	}
}

func TestNewClient_DefaultTransport(t *testing.T) {
	client, err := NewClient(WithTimeout(10 * time.Second))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if client.httpClient == nil {
		t.Error("expected a TLS client to be created")
	}
}

func TestSend_Success(t *testing.T) {
	mock := &mockHTTPClient{status: 200, body: `{"reply":"Hi there!"}`}
	client := newTestClient(t, mock)

	reply, err := client.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("Send() = %q, want %q", reply, "Hi there!")
	}

	if mock.lastReq.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", mock.lastReq.Method)
	}
	if got := mock.lastReq.URL.String(); got != "http://backend.test/api/chat" {
		t.Errorf("url = %s", got)
	}
	if got := mock.lastReq.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", got)
	}

	var body models.ChatRequest
	if err := json.Unmarshal(mock.lastBody, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body.Message != "Hello" {
		t.Errorf("request message = %q, want Hello", body.Message)
	}
}

func TestSend_PreservesMessageVerbatim(t *testing.T) {
	mock := &mockHTTPClient{status: 200, body: `{"reply":"ok"}`}
	client := newTestClient(t, mock)

	if _, err := client.Send(context.Background(), "  spaced \"quoted\"\n"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if string(mock.lastBody) != `{"message":"  spaced \"quoted\"\n"}` {
		t.Errorf("request body = %s", mock.lastBody)
	}
}

func TestSend_ExtraFieldsIgnored(t *testing.T) {
	mock := &mockHTTPClient{status: 200, body: `{"sessionId":"abc","reply":"multi\nline","intent":{"type":"x"}}`}
	client := newTestClient(t, mock)

	reply, err := client.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "multi\nline" {
		t.Errorf("Send() = %q", reply)
	}
}

func TestSend_EmptyMessage(t *testing.T) {
	mock := &mockHTTPClient{status: 200, body: `{"reply":"x"}`}
	client := newTestClient(t, mock)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := client.Send(context.Background(), msg)
		if !errors.Is(err, apierrors.ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if mock.calls != 0 {
		t.Errorf("expected no HTTP calls, got %d", mock.calls)
	}
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name  string
		mock  *mockHTTPClient
		check func(error) bool
	}{
		{
			name:  "network failure",
			mock:  &mockHTTPClient{err: errors.New("connection refused")},
			check: apierrors.IsNetworkError,
		},
		{
			name:  "server error",
			mock:  &mockHTTPClient{status: 502, body: `{"error":"chat failed"}`},
			check: func(err error) bool { return apierrors.GetHTTPStatus(err) == 502 },
		},
		{
			name:  "not json",
			mock:  &mockHTTPClient{status: 200, body: `<html>oops</html>`},
			check: apierrors.IsParseError,
		},
		{
			name:  "json array",
			mock:  &mockHTTPClient{status: 200, body: `["reply"]`},
			check: apierrors.IsParseError,
		},
		{
			name:  "missing reply",
			mock:  &mockHTTPClient{status: 200, body: `{"answer":"hi"}`},
			check: apierrors.IsParseError,
		},
		{
			name:  "reply not a string",
			mock:  &mockHTTPClient{status: 200, body: `{"reply":42}`},
			check: apierrors.IsParseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.mock)
			reply, err := client.Send(context.Background(), "Hello")
			if err == nil {
				t.Fatalf("Send() = %q, expected error", reply)
			}
			if !tt.check(err) {
				t.Errorf("Send() error = %v has the wrong classification", err)
			}
		})
	}
}

func TestSend_APIErrorKeepsBody(t *testing.T) {
	mock := &mockHTTPClient{status: 400, body: `{"error":"message is required"}`}
	client := newTestClient(t, mock)

	_, err := client.Send(context.Background(), "Hello")
	if got := apierrors.GetResponseBody(err); got != `{"error":"message is required"}` {
		t.Errorf("GetResponseBody() = %q", got)
	}
	if got := apierrors.GetEndpoint(err); got != models.EndpointChat {
		t.Errorf("GetEndpoint() = %q", got)
	}
}

func TestSend_Timeout(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
	client := newTestClient(t, mock, WithTimeout(20*time.Millisecond))

	_, err := client.Send(context.Background(), "Hello")
	if !apierrors.IsTimeoutError(err) {
		t.Errorf("Send() error = %v, want timeout", err)
	}
}

// transportTimeout mimics the error an http.Client returns when its own
// Timeout fires before the request context does.
type transportTimeout struct{}

func (transportTimeout) Error() string {
	return "Client.Timeout exceeded while awaiting headers"
}
func (transportTimeout) Timeout() bool   { return true }
func (transportTimeout) Temporary() bool { return true }

func TestSend_TransportTimeoutIsTimeout(t *testing.T) {
	mock := &mockHTTPClient{err: transportTimeout{}}
	client := newTestClient(t, mock, WithTimeout(1500*time.Millisecond))

	_, err := client.Send(context.Background(), "Hello")
	if !apierrors.IsTimeoutError(err) {
		t.Errorf("Send() error = %v, want timeout", err)
	}
	if apierrors.IsNetworkError(err) {
		t.Errorf("Send() error = %v, should not be a network error", err)
	}
}

func TestNewClient_SubSecondTimeoutKeptOnContext(t *testing.T) {
	var deadline time.Duration
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			d, ok := req.Context().Deadline()
			if !ok {
				t.Fatal("request context has no deadline")
			}
			deadline = time.Until(d)
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(`{"reply":"ok"}`)),
				Header:     make(http.Header),
			}, nil
		},
	}
	client := newTestClient(t, mock, WithTimeout(1500*time.Millisecond))

	if _, err := client.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if deadline <= time.Second || deadline > 1500*time.Millisecond {
		t.Errorf("request deadline = %v, want just under 1.5s", deadline)
	}
}

func TestSend_CallerCancel(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
	client := newTestClient(t, mock, WithTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, "Hello")
	if !apierrors.IsNetworkError(err) {
		t.Errorf("Send() error = %v, want network error", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error should wrap context.Canceled, got %v", err)
	}
}

func TestSend_Closed(t *testing.T) {
	mock := &mockHTTPClient{status: 200, body: `{"reply":"x"}`}
	client := newTestClient(t, mock)
	client.Close()
	client.Close()

	if !client.IsClosed() {
		t.Error("IsClosed() should be true after Close")
	}
	if _, err := client.Send(context.Background(), "Hello"); err == nil {
		t.Error("Send() on closed client should fail")
	}
	if mock.calls != 0 {
		t.Errorf("expected no HTTP calls, got %d", mock.calls)
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"simple", `{"reply":"Hi"}`, "Hi", false},
		{"empty reply", `{"reply":""}`, "", false},
		{"unicode", `{"reply":"Olá ✦"}`, "Olá ✦", false},
		{"null reply", `{"reply":null}`, "", true},
		{"empty body", ``, "", true},
		{"truncated", `{"reply":"Hi`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReply([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseReply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockChatClient(t *testing.T) {
	mock := &MockChatClient{Reply: "pong"}

	reply, err := mock.Send(context.Background(), "ping")
	if err != nil || reply != "pong" {
		t.Errorf("Send() = %q, %v", reply, err)
	}

	mock.ReplyFunc = func(ctx context.Context, message string) (string, error) {
		return strings.ToUpper(message), nil
	}
	reply, _ = mock.Send(context.Background(), "shout")
	if reply != "SHOUT" {
		t.Errorf("ReplyFunc reply = %q", reply)
	}

	if got := mock.Messages(); len(got) != 2 || got[0] != "ping" || got[1] != "shout" {
		t.Errorf("Messages() = %v", got)
	}

	mock.Close()
	if !mock.CloseCalled() {
		t.Error("CloseCalled() should be true")
	}
}
