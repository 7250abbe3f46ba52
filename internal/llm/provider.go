package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Built-in provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderOpenAI:
		return "gpt-5.2"
	default:
		return "gemini-3-flash-preview"
	}
}

// ProviderNames lists the supported providers.
func ProviderNames() []string {
	return []string{ProviderGemini, ProviderAnthropic, ProviderOpenAI}
}

// ProviderLabel is the display name of provider.
func ProviderLabel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return "Gemini"
	}
}

// EnvVar returns the environment variable conventionally holding the key
// for provider.
func EnvVar(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

func providerCode(provider string) string {
	return strings.ToUpper(provider) + "_ERROR"
}

// backend generates text for one provider.
type backend interface {
	generate(ctx context.Context, model string, req Request) (Response, error)
}

type backendFactory func(cfg Config) (backend, error)

func newBackend(cfg Config) (backend, error) {
	switch cfg.Provider {
	case "", ProviderGemini:
		return newGeminiBackend(cfg.APIKey)
	case ProviderAnthropic:
		return newAnthropicBackend(cfg.APIKey), nil
	case ProviderOpenAI:
		return newOpenAIBackend(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Client is the Completer used by the editor. It stays uninitialized until
// Initialize is called with a key.
type Client struct {
	mu       sync.RWMutex
	provider string
	model    string
	backend  backend
	factory  backendFactory
	log      *zap.Logger
}

// NewClient returns an uninitialized client. provider and model are the
// defaults applied when Initialize's Config leaves them empty.
func NewClient(provider, model string, log *zap.Logger) *Client {
	if provider == "" {
		provider = ProviderGemini
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{provider: provider, model: model, factory: newBackend, log: log}
}

// Initialize builds the backend for cfg.
func (c *Client) Initialize(cfg Config) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%s API key is required", c.providerFor(cfg))
	}
	cfg.Provider = c.providerFor(cfg)

	b, err := c.factory(cfg)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = cfg.Provider
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if c.model == "" {
		c.model = DefaultModel(c.provider)
	}
	c.backend = b
	c.log.Info("assistant client initialized", zap.String("provider", c.provider), zap.String("model", c.model))
	return nil
}

func (c *Client) providerFor(cfg Config) string {
	if cfg.Provider != "" {
		return cfg.Provider
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provider
}

// IsInitialized reports whether a backend has been constructed.
func (c *Client) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend != nil
}

// Reset drops the backend so the next use must initialize again.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend = nil
}

// Name describes the active provider and model.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	model := c.model
	if model == "" {
		model = DefaultModel(c.provider)
	}
	return fmt.Sprintf("%s (%s)", c.provider, model)
}

// Complete sends req to the backend. Every failure is a *RemoteError.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	c.mu.RLock()
	b, provider, model := c.backend, c.provider, c.model
	c.mu.RUnlock()

	if b == nil {
		return Response{}, &RemoteError{
			Message: fmt.Sprintf("%s service not initialized", provider),
			Code:    CodeNotInitialized,
		}
	}

	resp, err := b.generate(ctx, model, req)
	if err != nil {
		c.log.Error("completion failed", zap.String("provider", provider), zap.Error(err))
		return Response{}, remoteError(provider, err)
	}
	fields := []zap.Field{zap.String("provider", provider), zap.Int("chars", len(resp.Text))}
	if resp.Usage != nil {
		fields = append(fields, zap.Int("total_tokens", resp.Usage.TotalTokens))
	}
	c.log.Debug("completion finished", fields...)
	return resp, nil
}

func maxTokens(requested, fallback int) int64 {
	if requested > 0 {
		return int64(requested)
	}
	return int64(fallback)
}
