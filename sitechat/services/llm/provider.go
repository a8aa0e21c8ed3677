// Package llm wraps the hosted completion APIs behind a single capability.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider turns one prompt into one completion.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ProviderKind string

const (
	OpenAI    ProviderKind = "openai"
	Anthropic ProviderKind = "anthropic"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

// ParseProviderKind accepts exactly the provider names shown on the setup form.
func ParseProviderKind(s string) (ProviderKind, bool) {
	switch ProviderKind(s) {
	case OpenAI, Anthropic:
		return ProviderKind(s), true
	}
	return "", false
}

// Models carries the fixed model choice per provider.
type Models struct {
	OpenAI             string
	Anthropic          string
	AnthropicMaxTokens int
	// BaseURL overrides the API endpoint of whichever provider is built.
	BaseURL string
}

// Factory builds a provider for a session's credentials.
type Factory func(kind ProviderKind, apiKey string) (Provider, error)

// NewFactory returns the Factory used in production.
func NewFactory(models Models) Factory {
	return func(kind ProviderKind, apiKey string) (Provider, error) {
		return NewProvider(kind, apiKey, models)
	}
}

func NewProvider(kind ProviderKind, apiKey string, models Models) (Provider, error) {
	switch kind {
	case OpenAI:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: models.BaseURL,
			Model:   models.OpenAI,
		})
	case Anthropic:
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:    apiKey,
			BaseURL:   models.BaseURL,
			Model:     models.Anthropic,
			MaxTokens: models.AnthropicMaxTokens,
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
}
