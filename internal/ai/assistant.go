// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultAssistantBin is the assistant CLI looked up on PATH.
	DefaultAssistantBin = "claude"
	// DefaultAssistantTimeout is the hard limit for one assistant call.
	DefaultAssistantTimeout = 5 * time.Second
	// DefaultAssistantLines is how many stdout lines are kept.
	DefaultAssistantLines = 5

	// assistantMaxBytes caps captured stdout even when no newline arrives.
	assistantMaxBytes = 64 << 10
	// assistantWaitDelay bounds how long Wait blocks on open pipes after a kill.
	assistantWaitDelay = 500 * time.Millisecond
)

// DefaultAssistantArgs select non-interactive, single-turn behaviour.
var DefaultAssistantArgs = []string{"--no-interactive", "--max-turns", "1"}

// Assistant runs a local text-generation CLI as a one-shot subprocess.
// The prompt goes to stdin; only the first lines of stdout are kept and
// stderr is discarded.
type Assistant struct {
	Bin      string
	Args     []string
	Timeout  time.Duration
	MaxLines int

	lookPath func(string) (string, error)
}

// NewAssistant creates an Assistant for bin with the default flags.
// Empty bin and non-positive timeout fall back to the defaults.
func NewAssistant(bin string, timeout time.Duration) *Assistant {
	if strings.TrimSpace(bin) == "" {
		bin = DefaultAssistantBin
	}
	if timeout <= 0 {
		timeout = DefaultAssistantTimeout
	}
	return &Assistant{
		Bin:      bin,
		Args:     append([]string(nil), DefaultAssistantArgs...),
		Timeout:  timeout,
		MaxLines: DefaultAssistantLines,
		lookPath: exec.LookPath,
	}
}

// Name identifies the assistant in logs.
func (a *Assistant) Name() string { return a.Bin }

// Available reports whether the assistant binary resolves on PATH.
func (a *Assistant) Available() bool {
	if a == nil || strings.TrimSpace(a.Bin) == "" {
		return false
	}
	look := a.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(a.Bin)
	return err == nil
}

// Ask sends prompt to the assistant and returns its answer: the first
// MaxLines lines joined with spaces. When maxWords > 0 and the answer is
// longer, the first maxWords words are joined with hyphens instead.
// Missing binaries, non-zero exits, and timeouts are returned as errors.
func (a *Assistant) Ask(ctx context.Context, prompt string, maxWords int) (string, error) {
	if a == nil || strings.TrimSpace(a.Bin) == "" {
		return "", ErrUnavailable
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultAssistantTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxLines := a.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultAssistantLines
	}
	stdout := &headWriter{maxLines: maxLines, maxBytes: assistantMaxBytes}

	cmd := exec.CommandContext(execCtx, a.Bin, a.Args...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Stdout = stdout
	cmd.WaitDelay = assistantWaitDelay

	if err := cmd.Run(); err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("assistant %s: timed out after %s: %w", a.Bin, timeout, context.DeadlineExceeded)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("assistant %s: %w: %w", a.Bin, ErrUnavailable, err)
		}
		return "", fmt.Errorf("assistant %s: %w", a.Bin, err)
	}

	response := strings.Join(strings.Split(strings.TrimSpace(stdout.String()), "\n"), " ")
	response = strings.TrimSpace(response)

	if maxWords > 0 && response != "" {
		if words := strings.Fields(response); len(words) > maxWords {
			response = strings.Join(words[:maxWords], "-")
		}
	}

	if response == "" {
		return "", fmt.Errorf("assistant %s: %w", a.Bin, ErrEmptyResponse)
	}
	return response, nil
}

// headWriter keeps the first maxLines lines written to it and silently
// discards the rest so the child never sees a broken pipe.
type headWriter struct {
	buf      bytes.Buffer
	lines    int
	maxLines int
	maxBytes int
}

func (w *headWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 && w.lines < w.maxLines && w.buf.Len() < w.maxBytes {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.buf.Write(p)
			break
		}
		w.buf.Write(p[:i+1])
		w.lines++
		p = p[i+1:]
	}
	return n, nil
}

func (w *headWriter) String() string {
	s := w.buf.String()
	if len(s) > w.maxBytes {
		s = s[:w.maxBytes]
	}
	return s
}
