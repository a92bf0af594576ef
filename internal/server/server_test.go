package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
)

// funcProvider adapts a function to Provider
type funcProvider func(ctx context.Context, message string) (string, error)

func (f funcProvider) Name() string { return "test" }

func (f funcProvider) Reply(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:            "127.0.0.1:0",
		AllowedOrigin:   "*",
		Provider:        config.ProviderEcho,
		ProviderTimeout: 5 * time.Second,
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		provider   Provider
		wantStatus int
		wantBody   any
	}{
		{
			name:       "echo reply",
			body:       `{"message":"Hello"}`,
			provider:   EchoProvider{},
			wantStatus: http.StatusOK,
			wantBody:   models.ChatResponse{Reply: "You said: Hello"},
		},
		{
			name: "message passed verbatim",
			body: `{"message":"  spaced  "}`,
			provider: funcProvider(func(_ context.Context, msg string) (string, error) {
				return "[" + msg + "]", nil
			}),
			wantStatus: http.StatusOK,
			wantBody:   models.ChatResponse{Reply: "[  spaced  ]"},
		},
		{
			name:       "invalid json",
			body:       `{"message":`,
			provider:   EchoProvider{},
			wantStatus: http.StatusBadRequest,
			wantBody:   models.ErrorResponse{Error: "invalid JSON body"},
		},
		{
			name:       "empty body",
			body:       ``,
			provider:   EchoProvider{},
			wantStatus: http.StatusBadRequest,
			wantBody:   models.ErrorResponse{Error: "invalid JSON body"},
		},
		{
			name:       "blank message",
			body:       `{"message":"   "}`,
			provider:   EchoProvider{},
			wantStatus: http.StatusBadRequest,
			wantBody:   models.ErrorResponse{Error: "message is required"},
		},
		{
			name:       "missing message",
			body:       `{}`,
			provider:   EchoProvider{},
			wantStatus: http.StatusBadRequest,
			wantBody:   models.ErrorResponse{Error: "message is required"},
		},
		{
			name: "provider failure",
			body: `{"message":"Hello"}`,
			provider: funcProvider(func(context.Context, string) (string, error) {
				return "", errors.New("quota exceeded")
			}),
			wantStatus: http.StatusBadGateway,
			wantBody:   models.ErrorResponse{Error: "chat provider failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testServerConfig(), tt.provider, nil)
			rec := doRequest(t, s.Router(), http.MethodPost, models.EndpointChat, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			switch want := tt.wantBody.(type) {
			case models.ChatResponse:
				var got models.ChatResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("response mismatch (-want +got):\n%s", diff)
				}
			case models.ErrorResponse:
				var got models.ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("error mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestHandleChat_ProviderTimeout(t *testing.T) {
	cfg := testServerConfig()
	cfg.ProviderTimeout = 20 * time.Millisecond

	s := New(cfg, funcProvider(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), nil)

	rec := doRequest(t, s.Router(), http.MethodPost, models.EndpointChat, `{"message":"slow"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleChat_ProviderPanicRecovered(t *testing.T) {
	s := New(testServerConfig(), funcProvider(func(context.Context, string) (string, error) {
		panic("boom")
	}), nil)

	rec := doRequest(t, s.Router(), http.MethodPost, models.EndpointChat, `{"message":"Hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	s := New(testServerConfig(), EchoProvider{}, nil)
	rec := doRequest(t, s.Router(), http.MethodGet, models.EndpointChat, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := New(testServerConfig(), EchoProvider{}, nil)
	rec := doRequest(t, s.Router(), http.MethodGet, models.EndpointHealth, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "ok" || got["provider"] != config.ProviderEcho {
		t.Errorf("health = %v", got)
	}
}

func TestHandleIndex(t *testing.T) {
	s := New(testServerConfig(), EchoProvider{}, nil)
	rec := doRequest(t, s.Router(), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{models.EndpointChat, models.ErrorReply, models.ThinkingText, "Clear"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	s := New(testServerConfig(), EchoProvider{}, nil)

	req := httptest.NewRequest(http.MethodOptions, models.EndpointChat, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := New(testServerConfig(), EchoProvider{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Post("http://"+ln.Addr().String()+models.EndpointChat,
		"application/json", strings.NewReader(`{"message":"ping"}`))
	if err != nil {
		cancel()
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "You said: ping") {
		t.Errorf("response = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRun_BadAddr(t *testing.T) {
	cfg := testServerConfig()
	cfg.Addr = "not-an-address"
	s := New(cfg, EchoProvider{}, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Error("Run() with a bad address should fail")
	}
}
