// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP endpoints of the slug server.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"dmuxslug/internal/namer"
	"dmuxslug/internal/slug"
)

// Generator is the part of *namer.Generator the handlers use.
type Generator interface {
	Derive(ctx context.Context, prompt string) namer.Result
	Plan(prompt string) []string
}

// Slug serves slug generation requests.
type Slug struct {
	gen    Generator
	logger *slog.Logger
}

// NewSlug creates the slug handler group.
func NewSlug(gen Generator, logger *slog.Logger) *Slug {
	return &Slug{gen: gen, logger: logger}
}

type slugRequest struct {
	Prompt string `json:"prompt"`
}

type planResponse struct {
	Long       bool     `json:"long"`
	Strategies []string `json:"strategies"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate runs the full strategy chain. The prompt comes from a JSON body
// on POST or the "prompt" query parameter on GET.
func (s *Slug) Generate(w http.ResponseWriter, r *http.Request) {
	prompt, ok := s.readPrompt(w, r)
	if !ok {
		return
	}

	res := s.gen.Derive(r.Context(), prompt)
	s.logger.InfoContext(r.Context(), "slug generated",
		"slug", res.Slug,
		"source", res.Source,
		"prompt_chars", utf8.RuneCountInString(prompt),
	)
	writeJSON(w, http.StatusOK, res)
}

// Simple runs only the offline heuristic. It never calls out of process.
func (s *Slug) Simple(w http.ResponseWriter, r *http.Request) {
	prompt, ok := s.readPrompt(w, r)
	if !ok {
		return
	}

	out := slug.Simple(prompt)
	source := namer.SourceHeuristic
	if slug.IsFallback(out) {
		source = namer.SourceFallback
	}
	writeJSON(w, http.StatusOK, namer.Result{Slug: out, Source: source})
}

// Plan reports which strategies Generate would try, without running them.
func (s *Slug) Plan(w http.ResponseWriter, r *http.Request) {
	prompt, ok := s.readPrompt(w, r)
	if !ok {
		return
	}

	strategies := s.gen.Plan(prompt)
	if strategies == nil {
		strategies = []string{}
	}
	strategies = append(strategies, namer.SourceFallback)
	writeJSON(w, http.StatusOK, planResponse{Long: namer.IsLong(prompt), Strategies: strategies})
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readPrompt extracts and validates the prompt, writing the error response
// itself when it returns false.
func (s *Slug) readPrompt(w http.ResponseWriter, r *http.Request) (string, bool) {
	var prompt string

	if r.Method == http.MethodGet {
		prompt = r.URL.Query().Get("prompt")
	} else {
		var req slugRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body is too large."})
			case errors.Is(err, io.EOF):
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body is empty."})
			default:
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be a JSON object with a \"prompt\" string."})
			}
			return "", false
		}
		prompt = req.Prompt
	}

	if msg := validatePrompt(prompt); msg != "" {
		status := http.StatusBadRequest
		if utf8.RuneCountInString(prompt) > maxPromptLen {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return "", false
	}
	return prompt, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
