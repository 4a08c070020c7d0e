// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command dmux-slug prints a session slug for a task prompt. The prompt is
// taken from the arguments, or from stdin when there are none.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"dmuxslug/internal/config"
	"dmuxslug/internal/logging"
	"dmuxslug/internal/namer"
	"dmuxslug/internal/slug"
)

const usage = `USAGE:
    dmux-slug [options] [prompt words...]

Prints a short kebab-case slug for the prompt. With no prompt arguments the
prompt is read from stdin.

OPTIONS:
    -simple          Offline heuristic only; never calls an API or the assistant
    -no-assistant    Skip the local assistant CLI
    -source          Print the strategy that produced the slug
    -format string   Output format: text, json or yaml (default "text")
    -v               Log strategy misses to stderr

ENVIRONMENT:
    SLUG_API_PROVIDER, SLUG_API_BASE_URL, SLUG_API_MODELS, SLUG_API_TIMEOUT,
    SLUG_ASSISTANT_BIN, SLUG_ASSISTANT_TIMEOUT, and the provider key
    (OPENROUTER_API_KEY, OPENAI_API_KEY, MISTRAL_API_KEY, CLAUDE_API_KEY or
    GEMINI_API_KEY)
`

// maxStdinBytes caps how much of stdin is read as the prompt.
const maxStdinBytes = 1 << 20

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the parsed command-line flags.
type options struct {
	simple      bool
	noAssistant bool
	source      bool
	format      string
	verbose     bool
	words       []string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	flags := flag.NewFlagSet("dmux-slug", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	flags.BoolVar(&opts.simple, "simple", false, "")
	flags.BoolVar(&opts.noAssistant, "no-assistant", false, "")
	flags.BoolVar(&opts.source, "source", false, "")
	flags.StringVar(&opts.format, "format", "text", "")
	flags.BoolVar(&opts.verbose, "v", false, "")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	switch opts.format {
	case "text", "json", "yaml":
	default:
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	opts.words = flags.Args()
	return opts, nil
}

// run is main without the process exit, so it can be tested.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "dmux-slug: %v\n", err)
		return 2
	}

	prompt := strings.Join(opts.words, " ")
	if len(opts.words) == 0 {
		b, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes))
		if err != nil {
			fmt.Fprintf(stderr, "dmux-slug: reading stdin: %v\n", err)
			return 1
		}
		prompt = string(b)
	}

	var res namer.Result
	if opts.simple {
		res = namer.Result{Slug: slug.Simple(prompt), Source: namer.SourceHeuristic}
		if slug.IsFallback(res.Slug) {
			res.Source = namer.SourceFallback
		}
	} else {
		gen, err := newGenerator(opts, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "dmux-slug: %v\n", err)
			return 1
		}
		res = gen.Derive(ctx, prompt)
	}

	if err := write(stdout, opts, res); err != nil {
		fmt.Fprintf(stderr, "dmux-slug: %v\n", err)
		return 1
	}
	return 0
}

func newGenerator(opts options, stderr io.Writer) (*namer.Generator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.Discard()
	if opts.verbose {
		logger, _ = logging.New(logging.Options{Env: "development", Level: slog.LevelDebug, Output: stderr})
	}

	return namer.NewFromConfig(namer.Config{
		APIKey:           cfg.APIKey,
		Provider:         cfg.APIProvider,
		BaseURL:          cfg.APIBaseURL,
		Models:           cfg.APIModels,
		APITimeout:       cfg.APITimeout,
		AssistantBin:     cfg.AssistantBin,
		AssistantTimeout: cfg.AssistantTimeout,
		DisableAssistant: opts.noAssistant,
	}, namer.WithLogger(logger))
}

func write(w io.Writer, opts options, res namer.Result) error {
	switch opts.format {
	case "json":
		return json.NewEncoder(w).Encode(res)
	case "yaml":
		b, err := yaml.Marshal(res)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	if opts.source {
		_, err := fmt.Fprintf(w, "%s\t%s\n", res.Slug, res.Source)
		return err
	}
	_, err := fmt.Fprintln(w, res.Slug)
	return err
}
