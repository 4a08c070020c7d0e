// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package logging builds the process-wide slog.Logger: text output in
// development, JSON elsewhere, and an optional Sentry fan-out for warnings
// and errors when a DSN is configured.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// sentryFlushTimeout bounds how long Close waits for buffered events.
const sentryFlushTimeout = 2 * time.Second

// Options configure New.
type Options struct {
	Env       string // "development" selects the text handler
	Level     slog.Level
	SentryDSN string
	Output    io.Writer // defaults to os.Stdout
}

// ContextExtractor pulls a request-scoped attribute out of ctx.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New returns the logger and a close function that flushes Sentry. The
// close function is always safe to call. A Sentry init failure is logged
// and the logger falls back to stdout only.
func New(opts Options, extractors ...ContextExtractor) (*slog.Logger, func()) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.Env == "development" {
		handler = slog.NewTextHandler(out, hopts)
	} else {
		handler = slog.NewJSONHandler(out, hopts)
	}

	closeFn := func() {}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
			EnableLogs:  true,
		})
		if err != nil {
			slog.New(handler).Error("sentry init failed, logging to stdout only", "error", err)
		} else {
			sentryHandler := sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
			}.NewSentryHandler(context.Background())
			handler = fanOut(handler, sentryHandler)
			closeFn = func() { sentry.Flush(sentryFlushTimeout) }
		}
	}

	return slog.New(withContext(handler, extractors...)), closeFn
}

// Discard returns a logger that drops everything. Used by tests and the
// CLI when verbose output is off.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
