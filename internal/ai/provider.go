// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai wraps the external text-generation collaborators used for slug
// naming: HTTP chat-completion providers (OpenRouter, OpenAI, Mistral, Claude,
// Gemini) and a local assistant CLI invoked as a subprocess.
package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultTimeout bounds a single HTTP generation request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrEmptyResponse is returned when a collaborator answers with no text.
	ErrEmptyResponse = errors.New("ai: empty response")
	// ErrUnavailable is returned when a collaborator cannot be reached at all.
	ErrUnavailable = errors.New("ai: collaborator unavailable")
)

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	// systemPrompt may be empty; userPrompt is the request itself.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "openrouter", "gemini").
	Name() string
}

// ModelGenerator is implemented by providers that can target a specific
// model per request. Slug naming walks an ordered model list through it.
type ModelGenerator interface {
	GenerateWithModel(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxTokens caps the completion length; zero leaves it to the API.
	MaxTokens int
	// Temperature is sent only when non-nil so zero stays expressible.
	Temperature *float64
	// Timeout bounds each HTTP request; zero means DefaultTimeout.
	Timeout time.Duration
}

// Float returns a pointer to f, for ProviderConfig.Temperature literals.
func Float(f float64) *float64 { return &f }

func (c ProviderConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// New builds the named provider. Unknown names return an error.
func New(name string, cfg ProviderConfig) (Provider, error) {
	switch name {
	case "openrouter":
		return newOpenRouter(cfg), nil
	case "openai":
		return newOpenAI(cfg), nil
	case "mistral":
		return newMistral(cfg), nil
	case "claude":
		return newClaude(cfg), nil
	case "gemini":
		return newGemini(cfg), nil
	}
	return nil, fmt.Errorf("ai: unknown provider %q", name)
}

// Registry manages available AI providers and selects the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys, and unknown names,
// are silently skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		p, err := New(name, cfg)
		if err != nil {
			continue
		}
		r.providers[name] = p
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// GenerateWithModel calls the active provider with an explicit model.
// Providers that cannot switch models fall back to Generate.
func (r *Registry) GenerateWithModel(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	if mg, ok := p.(ModelGenerator); ok {
		return mg.GenerateWithModel(ctx, model, systemPrompt, userPrompt)
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q: %w", r.active, ErrUnavailable)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all providers that have API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a provider in the registry.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
