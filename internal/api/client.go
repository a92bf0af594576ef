// Package api provides the HTTP client for the chat backend.
package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"

	"github.com/diogo/geminichat/internal/models"
)

// HTTPDoer is the subset of tls_client.HttpClient used by ChatClient.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatClientInterface defines the backend operations needed by the UI layers
type ChatClientInterface interface {
	Send(ctx context.Context, message string) (string, error)
	URL() string
	Close()
}

// ChatClient talks to a chat backend over POST /api/chat
type ChatClient struct {
	httpClient HTTPDoer
	baseURL    string
	endpoint   string
	timeout    time.Duration
	logger     *zap.Logger
	mu         sync.RWMutex
	closed     bool
}

// Ensure ChatClient implements ChatClientInterface
var _ ChatClientInterface = (*ChatClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithBaseURL sets the scheme and host the endpoint is resolved against
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ChatClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithEndpoint overrides the chat endpoint path
func WithEndpoint(endpoint string) ClientOption {
	return func(c *ChatClient) {
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		c.endpoint = endpoint
	}
}

// WithTimeout bounds each exchange. Zero means no bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the TLS client, mainly for tests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *ChatClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new ChatClient
func NewClient(opts ...ClientOption) (*ChatClient, error) {
	client := &ChatClient{
		baseURL:  models.DefaultBackendURL,
		endpoint: models.EndpointChat,
		timeout:  300 * time.Second,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("backend URL cannot be empty")
	}

	if client.httpClient == nil {
		// The exchange deadline lives on the request context so a slow
		// backend always surfaces as a TimeoutError; the transport is unbounded.
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(0),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// URL returns the full chat endpoint URL
func (c *ChatClient) URL() string {
	return c.baseURL + c.endpoint
}

// Timeout returns the per-exchange bound
func (c *ChatClient) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections. Further Send calls fail.
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

// IsClosed returns true if the client has been closed
func (c *ChatClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
