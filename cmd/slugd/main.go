// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the slug server. It loads
// configuration, builds the slug generator, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmuxslug/internal/cache"
	"dmuxslug/internal/config"
	"dmuxslug/internal/handlers"
	"dmuxslug/internal/logging"
	"dmuxslug/internal/middleware"
	"dmuxslug/internal/namer"
	"dmuxslug/internal/router"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere, plus Sentry
	// when SENTRY_DSN is set.
	logger, flush := logging.New(logging.Options{
		Env:       cfg.Env,
		Level:     cfg.LogLevel,
		SentryDSN: cfg.SentryDSN,
	}, middleware.RequestIDAttr)
	defer flush()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"remote", cfg.HasAPIKey(),
		"provider", cfg.APIProvider,
		"models", cfg.APIModels,
	)

	gen, err := namer.NewFromConfig(namer.Config{
		APIKey:           cfg.APIKey,
		Provider:         cfg.APIProvider,
		BaseURL:          cfg.APIBaseURL,
		Models:           cfg.APIModels,
		APITimeout:       cfg.APITimeout,
		AssistantBin:     cfg.AssistantBin,
		AssistantTimeout: cfg.AssistantTimeout,
	}, namer.WithLogger(logger))
	if err != nil {
		slog.Error("failed to build slug generator", "error", err)
		os.Exit(1)
	}

	if !cfg.HasAPIKey() {
		slog.Warn("no API key configured, remote slug strategy disabled")
	}

	// Rate limiting: shared through Valkey when configured, otherwise
	// per-process.
	var limiter middleware.Limiter
	if cfg.ValkeyAddr != "" {
		valkeyClient, err := cache.ConnectValkey(context.Background(), cfg.ValkeyAddr, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		limiter = cache.NewRateLimiter(valkeyClient, cfg.RateLimit, time.Minute)
	} else {
		memLimiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer memLimiter.Stop()
		limiter = memLimiter
	}

	r := router.New(logger, handlers.NewSlug(gen, logger), limiter)

	// WriteTimeout must cover the worst case of the strategy chain: every
	// remote model timing out, then both assistant attempts.
	writeTimeout := time.Duration(len(cfg.APIModels))*cfg.APITimeout + 2*cfg.AssistantTimeout + 10*time.Second

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			flush()
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
