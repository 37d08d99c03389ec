package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/domain/srs"
)

func newDueCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List units due today or overdue",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env, p printer) error {
				return printSchedule(cmd.Context(), env, p, env.Schedule.DueList, true)
			})
		},
	}
}

func newUpcomingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "List units due within the next week",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(env *Env, p printer) error {
				return printSchedule(cmd.Context(), env, p, env.Schedule.UpcomingList, false)
			})
		},
	}
}

func printSchedule(
	ctx context.Context,
	env *Env,
	p printer,
	list func(context.Context) ([]srs.Entry, error),
	overdue bool,
) error {
	entries, err := list(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []srs.Entry{}
	}
	data := struct {
		Today   string      `json:"today"`
		Entries []srs.Entry `json:"entries"`
	}{env.Schedule.Today(), entries}

	return p.print(data, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "today: %s\n", data.Today); err != nil {
			return err
		}
		header := "SUBJECT\tUNIT\tTITLE\tLAST\tNEXT DUE"
		if overdue {
			header += "\tOVERDUE"
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			row := []string{e.SubjectName, e.UnitCode, e.Title, strconv.Itoa(e.LastNo), e.NextDue}
			if overdue {
				row = append(row, strconv.Itoa(e.OverdueDays))
			}
			rows = append(rows, row)
		}
		return table(w, header, rows)
	})
}
