package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/config"
	"github.com/371050/study-pwa/internal/platform/database"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/service/ingest"
	"github.com/371050/study-pwa/internal/service/snapshot"
	"github.com/371050/study-pwa/internal/store"
)

// RootOptions holds global flags and the hooks commands use to reach the
// ledger.
type RootOptions struct {
	Format    string
	ConfigDir string

	// LoadConfig reads the configuration. Defaults to config.LoadFrom(ConfigDir).
	LoadConfig func() (*config.Config, error)
	// Connect opens the ledger. Defaults to opening the configured store.
	Connect func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Env, error)
}

// Env is an open ledger with its services.
type Env struct {
	Config    *config.Config
	Store     store.Store
	Subjects  service.SubjectService
	Ledger    service.LedgerService
	Schedule  service.ScheduleService
	Entries   *ingest.Service
	Snapshots *snapshot.Service
}

// Close releases the store.
func (e *Env) Close() error {
	return e.Store.Close()
}

// NewEnv builds the services over st.
func NewEnv(cfg *config.Config, st store.Store, log *slog.Logger, opts ...service.Option) (*Env, error) {
	env := &Env{Config: cfg, Store: st}
	var err error
	if env.Subjects, err = service.NewSubjectService(st, log, opts...); err != nil {
		return nil, err
	}
	if env.Ledger, err = service.NewLedgerService(st, log, opts...); err != nil {
		return nil, err
	}
	if env.Schedule, err = service.NewScheduleService(st, log, opts...); err != nil {
		return nil, err
	}
	if env.Entries, err = ingest.NewService(st, log, opts...); err != nil {
		return nil, err
	}
	if env.Snapshots, err = snapshot.NewService(st, log, opts...); err != nil {
		return nil, err
	}
	return env, nil
}

func defaultConnect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Env, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	st, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	env, err := NewEnv(cfg, st, log, service.WithLocation(loc))
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return env, nil
}

func (o *RootOptions) config() (*config.Config, error) {
	if o.LoadConfig != nil {
		return o.LoadConfig()
	}
	return config.LoadFrom(o.ConfigDir)
}

// logger writes diagnostics to the command's error stream so they never
// mix with results.
func (o *RootOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), cfg.Server.LogLevel)
}

// withEnv opens the ledger, runs fn and closes the ledger.
func (o *RootOptions) withEnv(cmd *cobra.Command, fn func(env *Env, p printer) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	connect := o.Connect
	if connect == nil {
		connect = defaultConnect
	}
	env, err := connect(cmd.Context(), cfg, o.logger(cmd, cfg))
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	return fn(env, o.printer(cmd.OutOrStdout()))
}

func (o *RootOptions) printer(w io.Writer) printer {
	return printer{format: o.Format, w: w}
}

// NewRootCommand creates the studyctl command tree.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:           "studyctl",
		Short:         "Manage the study review ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageError("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: "invalid flags", Err: err}
	})

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", ".", "directory holding config.yaml and .env")

	cmd.AddCommand(
		newSubjectsCommand(opts),
		newUnitsCommand(opts),
		newReviewsCommand(opts),
		newRecordCommand(opts),
		newIngestCommand(opts),
		newDueCommand(opts),
		newUpcomingCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newClearCommand(opts),
		newSeedCommand(opts),
		newMigrateCommand(opts),
		newTokenCommand(opts),
	)
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Message: "invalid arguments", Err: err}
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs reporting a usage error.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: ExitUsage, Message: "invalid arguments", Err: err}
		}
		return nil
	}
}

// parseID parses a positive id argument.
func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError("invalid %s %q: must be a positive integer", name, arg)
	}
	return id, nil
}

// parseNo parses a positive review number argument.
func parseNo(arg string) (int, error) {
	no, err := strconv.Atoi(arg)
	if err != nil || no <= 0 {
		return 0, usageError("invalid review number %q: must be a positive integer", arg)
	}
	return no, nil
}
