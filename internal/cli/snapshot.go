package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole ledger as a JSON snapshot",
		Long: `Write the whole ledger as a JSON snapshot.

Without --out the snapshot goes to standard output. When --out names a
directory the file is called study-sync-YYYY-MM-DD.json. Files are
replaced atomically.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env, _ printer) error {
				snap, err := env.Snapshots.Export(cmd.Context())
				if err != nil {
					return err
				}
				if out == "" {
					return snap.Encode(cmd.OutOrStdout())
				}

				path := out
				if info, err := os.Stat(out); err == nil && info.IsDir() {
					path = filepath.Join(out, env.Snapshots.ExportFileName())
				}
				var buf bytes.Buffer
				if err := snap.Encode(&buf); err != nil {
					return err
				}
				if err := atomic.WriteFile(path, &buf); err != nil {
					return fmt.Errorf("failed to write snapshot: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d subjects, %d units, %d reviews to %s\n",
					len(snap.Subjects), len(snap.Units), len(snap.Reviews), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "file or directory to write")
	return cmd
}

func newImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole ledger with a snapshot (- reads stdin)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			return opts.withEnv(cmd, func(env *Env, _ printer) error {
				return env.Snapshots.ImportOverwrite(cmd.Context(), raw)
			})
		},
	}
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	var reseed bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every subject, unit and review",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env, _ printer) error {
				if reseed {
					return env.Snapshots.Wipe(cmd.Context())
				}
				return env.Snapshots.ClearAll(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&reseed, "reseed", false, "seed the default subjects afterwards")
	return cmd
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default subjects to an empty ledger",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env, p printer) error {
				n, err := env.Snapshots.SeedDefaultSubjects(cmd.Context())
				if err != nil {
					return err
				}
				return p.print(map[string]int{"seeded": n}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "seeded %d subjects\n", n)
					return err
				})
			})
		},
	}
}
