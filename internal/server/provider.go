package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/diogo/geminichat/internal/config"
)

// ErrNoReply is returned when a provider answers with no text
var ErrNoReply = errors.New("provider returned an empty reply")

// Provider produces the bot reply for one user message. Implementations
// must be safe for concurrent use.
type Provider interface {
	Name() string
	Reply(ctx context.Context, message string) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider
func NewProvider(ctx context.Context, cfg config.ServerConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderEcho, "":
		return EchoProvider{}, nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q (want %s, %s or %s)",
			cfg.Provider, config.ProviderEcho, config.ProviderGemini, config.ProviderOpenAI)
	}
}

// EchoProvider answers without any network access
type EchoProvider struct{}

func (EchoProvider) Name() string { return config.ProviderEcho }

func (EchoProvider) Reply(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "You said: " + message, nil
}

// GeminiProvider answers with the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a GeminiProvider
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at another API host
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = baseURL
	}
}

// NewGeminiProvider creates a Gemini API backed provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return config.ProviderGemini }

func (p *GeminiProvider) Reply(ctx context.Context, message string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(message), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoReply
	}
	return text, nil
}

// OpenAIProvider answers with an OpenAI compatible chat completion API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider using the default OpenAI endpoint
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIProviderWithConfig creates a provider from a client config,
// which allows a custom BaseURL.
func NewOpenAIProviderWithConfig(cc openai.ClientConfig, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cc),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return config.ProviderOpenAI }

func (p *OpenAIProvider) Reply(ctx context.Context, message string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrNoReply
	}
	return resp.Choices[0].Message.Content, nil
}
