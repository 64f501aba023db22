// pasttense is the command-line front end for the pasttense API.
//
// Usage:
//
//	pasttense [-api URL] [-api-key KEY] [-timeout 30s] [-retries 0] <search|add> [tab flags]
//
//	pasttense search -top-k 5 -domain go.dev channel pipelines
//	pasttense add -url https://go.dev/blog/pipelines -html-file page.html
//	curl -s https://example.com | pasttense add -url https://example.com -content -
//
// Env vars:
//
//	PASTTENSE_API     base URL (default: http://localhost:8000)
//	PASTTENSE_API_KEY bearer token
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pasttense/pasttense/internal/ui"
	"github.com/pasttense/pasttense/internal/version"
	"github.com/pasttense/pasttense/pkg/client"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		cancel()
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "pasttense:", err)
		}
		os.Exit(1)
	}
}

type config struct {
	api     string
	apiKey  string
	timeout time.Duration
	retries int
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (config, []string, error) {
	cfg := config{}
	fs := flag.NewFlagSet("pasttense", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.api, "api", envOr("PASTTENSE_API", client.DefaultBaseURL), "API base URL")
	fs.StringVar(&cfg.apiKey, "api-key", os.Getenv("PASTTENSE_API_KEY"), "API bearer token")
	fs.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.IntVar(&cfg.retries, "retries", 0, "retries on network errors and 5xx")
	fs.BoolVar(&cfg.verbose, "v", false, "log client operations to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "pasttense %s\n\nUsage: pasttense [flags] <search|add> [tab flags]\n\n", version.String())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, rest, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	opts := []client.Option{
		client.WithAPIKey(cfg.apiKey),
		client.WithTimeout(cfg.timeout),
		client.WithRetry(cfg.retries),
	}
	if cfg.verbose {
		opts = append(opts, client.WithLogger(slog.New(
			slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)))
	}
	api, err := client.New(cfg.api, opts...)
	if err != nil {
		return err
	}

	app := ui.NewApp(api, stdin, stdout)
	if len(rest) > 0 {
		tab, err := ui.ParseTab(rest[0])
		if err != nil {
			return err
		}
		if err := app.Select(tab); err != nil {
			return err
		}
		rest = rest[1:]
	}
	return app.Run(ctx, rest)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
