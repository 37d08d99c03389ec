// Package main runs the study ledger HTTP server.
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

	"github.com/371050/study-pwa/internal/config"
	"github.com/371050/study-pwa/internal/platform/database"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/redact"
)

// options are the command-line flags.
type options struct {
	configDir string
	migrate   string
	seed      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configDir, "config-dir", ".", "directory holding config.yaml and .env")
	fs.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	fs.BoolVar(&opts.seed, "seed", true, "seed the default subjects into an empty ledger")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// run is main without the process exit. It returns the exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadFrom(opts.configDir)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %s\n", redact.Error(err))
		return 1
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		fmt.Fprintf(stderr, "failed to set up logger: %v\n", err)
		return 1
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("driver", cfg.Database.Driver),
		slog.Bool("auth_enabled", cfg.Auth.Enabled()))

	if opts.migrate != "" {
		if err := database.Migrate(ctx, cfg.Database, opts.migrate, log); err != nil {
			log.Error("migration failed", slog.String("error", redact.Error(err)))
			return 1
		}
		return 0
	}

	st, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open store", slog.String("error", redact.Error(err)))
		return 1
	}

	app, err := newApplication(cfg, log, st)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", redact.Error(err)))
		_ = st.Close()
		return 1
	}
	defer app.cleanup()

	if opts.seed {
		if _, err := app.snapshots.SeedDefaultSubjects(ctx); err != nil {
			log.Error("failed to seed default subjects", slog.String("error", redact.Error(err)))
			return 1
		}
	}

	if err := app.Run(ctx); err != nil {
		log.Error("server error", slog.String("error", redact.Error(err)))
		return 1
	}
	return 0
}
