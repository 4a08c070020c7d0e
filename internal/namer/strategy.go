// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package namer

import (
	"context"
	"errors"
	"fmt"

	"dmuxslug/internal/ai"
	"dmuxslug/internal/slug"
)

// Strategy sources reported in Result.Source.
const (
	SourceRemote     = "remote"
	SourceLongPrompt = "assistant-long"
	SourceAssistant  = "assistant"
	SourceHeuristic  = "heuristic"
	SourceFallback   = "fallback"
)

const (
	// Long-prompt assistant answers are trimmed to these limits.
	longMaxWords  = 5
	longMaxLength = 40

	// Remote requests ask for a tiny, low-variance completion.
	remoteMaxTokens   = 10
	remoteTemperature = 0.3
)

// ErrNoSlug means a strategy ran but produced nothing usable.
var ErrNoSlug = errors.New("namer: no usable slug")

// Strategy turns a prompt into a slug or explains why it could not.
// Implementations never panic on collaborator failure.
type Strategy interface {
	Name() string
	Slug(ctx context.Context, prompt string) (string, error)
}

// Assistant is the local CLI collaborator; *ai.Assistant satisfies it.
type Assistant interface {
	Available() bool
	Ask(ctx context.Context, prompt string, maxWords int) (string, error)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, prompt string) (string, error)
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Slug(ctx context.Context, prompt string) (string, error) {
	return s.Fn(ctx, prompt)
}

// ShortInstruction asks for a 1-2 word slug. Used for both the remote API
// and the assistant's direct attempt.
func ShortInstruction(prompt string) string {
	return fmt.Sprintf(`Generate a 1-2 word kebab-case slug for this prompt. Only respond with the slug, nothing else: "%s"`, prompt)
}

// LongInstruction asks for a 3-5 word slug capturing a long prompt's intent.
func LongInstruction(prompt string) string {
	return fmt.Sprintf(`Analyze this task description and create a concise 3-5 word kebab-case slug that captures its core intent. Only respond with the slug, nothing else. No explanations.

Task: "%s"

Slug:`, prompt)
}

// Heuristic wraps slug.Simple. A timestamp-shaped result counts as a miss
// so the caller decides when to fall back.
func Heuristic() Strategy {
	return StrategyFunc{Label: SourceHeuristic, Fn: func(_ context.Context, prompt string) (string, error) {
		s := slug.Simple(prompt)
		if s == "" || slug.IsFallback(s) {
			return "", ErrNoSlug
		}
		return s, nil
	}}
}

// LongPrompt asks the assistant for a 3-5 word slug. It returns
// ai.ErrUnavailable without spawning anything when the assistant is absent.
func LongPrompt(a Assistant) Strategy {
	return StrategyFunc{Label: SourceLongPrompt, Fn: func(ctx context.Context, prompt string) (string, error) {
		if a == nil || !a.Available() {
			return "", ai.ErrUnavailable
		}
		raw, err := a.Ask(ctx, LongInstruction(prompt), 0)
		if err != nil {
			return "", err
		}
		s := slug.Kebab(raw, longMaxWords, longMaxLength)
		if s == "" {
			return "", ErrNoSlug
		}
		return s, nil
	}}
}

// AssistantShort asks the assistant directly for a 1-2 word slug.
func AssistantShort(a Assistant) Strategy {
	return StrategyFunc{Label: SourceAssistant, Fn: func(ctx context.Context, prompt string) (string, error) {
		if a == nil {
			return "", ai.ErrUnavailable
		}
		raw, err := a.Ask(ctx, ShortInstruction(prompt), 0)
		if err != nil {
			return "", err
		}
		s := slug.Clean(raw)
		if s == "" {
			return "", ErrNoSlug
		}
		return s, nil
	}}
}

// Remote tries each model in order with one chat request and returns the
// first non-empty cleaned answer. Failures of every model are joined.
func Remote(gen ai.ModelGenerator, models []string) Strategy {
	return StrategyFunc{Label: SourceRemote, Fn: func(ctx context.Context, prompt string) (string, error) {
		if gen == nil || len(models) == 0 {
			return "", ai.ErrUnavailable
		}
		instruction := ShortInstruction(prompt)

		var errs []error
		for _, model := range models {
			raw, err := gen.GenerateWithModel(ctx, model, "", instruction)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", model, err))
				continue
			}
			if s := slug.Clean(raw); s != "" {
				return s, nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", model, ErrNoSlug))
		}
		return "", errors.Join(errs...)
	}}
}
