// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package namer picks a session slug for a task prompt. It tries the remote
// chat API, the local assistant CLI, and the offline heuristic in a fixed
// order, and falls back to a timestamp slug when all of them miss.
package namer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"dmuxslug/internal/ai"
	"dmuxslug/internal/slug"
)

const (
	// Prompts beyond either limit are classified as long.
	longPromptChars = 100
	longPromptWords = 15
)

// DefaultModels is the remote model priority order.
var DefaultModels = []string{
	"google/gemini-2.5-flash",
	"x-ai/grok-4-fast:free",
	"openai/gpt-4o-mini",
}

// Config carries everything the generator reads from the environment.
// An empty APIKey disables the remote strategy.
type Config struct {
	APIKey     string
	Provider   string // "openrouter" when empty
	BaseURL    string
	Models     []string
	APITimeout time.Duration

	AssistantBin     string
	AssistantTimeout time.Duration
	// DisableAssistant skips both assistant strategies.
	DisableAssistant bool
}

// Result is a generated slug and the strategy that produced it.
type Result struct {
	Slug   string `json:"slug" yaml:"slug"`
	Source string `json:"source" yaml:"source"`
}

// Generator runs the fallback chain. It holds no per-call state and is
// safe for concurrent use.
type Generator struct {
	remote    Strategy
	long      Strategy
	short     Strategy
	heuristic Strategy
	logger    *slog.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithRemote enables the remote strategy over gen with the given models.
func WithRemote(gen ai.ModelGenerator, models []string) Option {
	return func(g *Generator) { g.remote = Remote(gen, models) }
}

// WithAssistant enables both assistant strategies.
func WithAssistant(a Assistant) Option {
	return func(g *Generator) {
		g.long = LongPrompt(a)
		g.short = AssistantShort(a)
	}
}

// WithLogger logs each strategy miss at debug level. Without it the
// generator is silent.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator. With no options only the offline heuristic and
// the timestamp fallback are used.
func New(opts ...Option) *Generator {
	g := &Generator{heuristic: Heuristic()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromConfig wires the remote provider and the assistant CLI from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Generator, error) {
	var base []Option

	if cfg.APIKey != "" {
		models := cfg.Models
		if len(models) == 0 {
			models = DefaultModels
		}
		provider := cfg.Provider
		if provider == "" {
			provider = "openrouter"
		}
		reg := ai.NewRegistry(provider, map[string]ai.ProviderConfig{
			provider: {
				APIKey:      cfg.APIKey,
				Model:       models[0],
				BaseURL:     cfg.BaseURL,
				MaxTokens:   remoteMaxTokens,
				Temperature: ai.Float(remoteTemperature),
				Timeout:     cfg.APITimeout,
			},
		})
		if !reg.HasProvider(provider) {
			return nil, fmt.Errorf("namer: unknown provider %q", provider)
		}
		base = append(base, WithRemote(reg, models))
	}

	if !cfg.DisableAssistant {
		base = append(base, WithAssistant(ai.NewAssistant(cfg.AssistantBin, cfg.AssistantTimeout)))
	}

	return New(append(base, opts...)...), nil
}

// IsLong reports whether prompt is over 100 characters or 15 words.
func IsLong(prompt string) bool {
	return utf8.RuneCountInString(prompt) > longPromptChars ||
		len(strings.Fields(prompt)) > longPromptWords
}

// Generate returns a slug for prompt. It always succeeds.
func (g *Generator) Generate(ctx context.Context, prompt string) string {
	return g.Derive(ctx, prompt).Slug
}

// Derive returns a slug for prompt together with its source. Each strategy
// is tried at most once, in order, and the first hit wins.
func (g *Generator) Derive(ctx context.Context, prompt string) Result {
	if strings.TrimSpace(prompt) == "" {
		return Result{Slug: slug.Fallback(), Source: SourceFallback}
	}

	for _, s := range g.plan(prompt) {
		out, err := s.Slug(ctx, prompt)
		if err == nil && out != "" {
			return Result{Slug: out, Source: s.Name()}
		}
		g.debug(ctx, "slug strategy missed", "strategy", s.Name(), "error", err)
	}

	return Result{Slug: slug.Fallback(), Source: SourceFallback}
}

// Plan lists the strategy names Derive would try for prompt.
func (g *Generator) Plan(prompt string) []string {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	plan := g.plan(prompt)
	names := make([]string, len(plan))
	for i, s := range plan {
		names[i] = s.Name()
	}
	return names
}

// plan orders the strategies. The short assistant attempt runs for long
// prompts too, after the long-prompt attempt has missed.
func (g *Generator) plan(prompt string) []Strategy {
	plan := make([]Strategy, 0, 4)
	if g.remote != nil {
		plan = append(plan, g.remote)
	}
	if g.long != nil && IsLong(prompt) {
		plan = append(plan, g.long)
	}
	if g.short != nil {
		plan = append(plan, g.short)
	}
	return append(plan, g.heuristic)
}

func (g *Generator) debug(ctx context.Context, msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.DebugContext(ctx, msg, args...)
}
