package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/domain/srs"
)

func newUnitsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Inspect and edit the units of a subject",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <subject-id>",
			Short: "List a subject's units with their review status",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				subjectID, err := parseID("subject id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					units, err := env.Ledger.ListUnitsBySubject(cmd.Context(), subjectID)
					if err != nil {
						return err
					}
					return p.print(units, func(w io.Writer) error {
						return writeUnits(w, units)
					})
				})
			},
		},
		&cobra.Command{
			Use:   "get-or-create <subject-id> <code>",
			Short: "Print the id of a unit, creating it when missing",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				subjectID, err := parseID("subject id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					unitID, err := env.Ledger.GetOrCreateUnit(cmd.Context(), subjectID, args[1])
					if err != nil {
						return err
					}
					return p.print(map[string]int64{"unitId": unitID}, func(w io.Writer) error {
						_, err := io.WriteString(w, strconv.FormatInt(unitID, 10)+"\n")
						return err
					})
				})
			},
		},
		&cobra.Command{
			Use:   "title <unit-id> <title>",
			Short: "Replace a unit's title; an empty title clears it",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, _ printer) error {
					return env.Ledger.UpdateUnitTitle(cmd.Context(), unitID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "delete <unit-id>",
			Short: "Delete a unit and all of its reviews",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, _ printer) error {
					return env.Ledger.DeleteUnit(cmd.Context(), unitID)
				})
			},
		},
		&cobra.Command{
			Use:   "status <unit-id>",
			Short: "Show a unit's last review and next due date",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					status, err := env.Schedule.UnitStatus(cmd.Context(), unitID)
					if err != nil {
						return err
					}
					return p.print(status, func(w io.Writer) error {
						return writeUnits(w, []srs.UnitStatus{*status})
					})
				})
			},
		},
	)
	return cmd
}

func writeUnits(w io.Writer, units []srs.UnitStatus) error {
	rows := make([][]string, 0, len(units))
	for _, u := range units {
		last := "-"
		if u.Status.Reviewed() {
			last = strconv.Itoa(u.Status.LastNo)
		}
		rows = append(rows, []string{
			strconv.FormatInt(u.Unit.ID, 10),
			u.Unit.UnitCode,
			u.Unit.Title,
			last,
			dash(u.Status.LastDate),
			dash(u.Status.NextDue),
		})
	}
	return table(w, "ID\tCODE\tTITLE\tLAST\tLAST DATE\tNEXT DUE", rows)
}
