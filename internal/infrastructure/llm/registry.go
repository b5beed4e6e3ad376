package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"TenderScanner/internal/config"
	"TenderScanner/internal/ports"
)

// Factory builds a provider client from configuration.
type Factory func(ctx context.Context, cfg config.LLMConfig) (ports.LLMClient, error)

// Registry keeps a mapping from provider names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows the OpenAI and Gemini providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(config.ProviderOpenAI, func(_ context.Context, cfg config.LLMConfig) (ports.LLMClient, error) {
		return NewOpenAIClient(cfg), nil
	})
	r.Register(config.ProviderGemini, func(ctx context.Context, cfg config.LLMConfig) (ports.LLMClient, error) {
		return NewGeminiClient(ctx, cfg)
	})
	return r
}

// Register adds or replaces a provider factory.
func (r *Registry) Register(name string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[strings.ToLower(name)] = factory
}

// Build resolves cfg.Provider and constructs its client.
func (r *Registry) Build(ctx context.Context, cfg config.LLMConfig) (ports.LLMClient, error) {
	factory, ok := r.factories[strings.ToLower(strings.TrimSpace(cfg.Provider))]
	if !ok {
		return nil, fmt.Errorf("llm provider %q is not registered (known: %s)", cfg.Provider, strings.Join(r.names(), ", "))
	}
	return factory(ctx, cfg)
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
