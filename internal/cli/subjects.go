package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/domain"
)

func newSubjectsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List, add and reorder subjects",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List subjects in display order",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					subjects, err := env.Subjects.ListSubjects(cmd.Context())
					if err != nil {
						return err
					}
					return p.print(subjects, func(w io.Writer) error {
						return writeSubjects(w, subjects)
					})
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a subject after the existing ones",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					subject, err := env.Subjects.AddSubject(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return p.print(subject, func(w io.Writer) error {
						return writeSubjects(w, []domain.Subject{*subject})
					})
				})
			},
		},
		&cobra.Command{
			Use:   "move <id> <up|down>",
			Short: "Move a subject one place up or down",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("subject id", args[0])
				if err != nil {
					return err
				}
				direction, err := parseDirection(args[1])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					if err := env.Subjects.MoveSubject(cmd.Context(), id, direction); err != nil {
						return err
					}
					subjects, err := env.Subjects.ListSubjects(cmd.Context())
					if err != nil {
						return err
					}
					return p.print(subjects, func(w io.Writer) error {
						return writeSubjects(w, subjects)
					})
				})
			},
		},
	)
	return cmd
}

func parseDirection(arg string) (int, error) {
	switch arg {
	case "up", "-1":
		return -1, nil
	case "down", "1", "+1":
		return 1, nil
	default:
		return 0, usageError("invalid direction %q: must be up or down", arg)
	}
}

func writeSubjects(w io.Writer, subjects []domain.Subject) error {
	rows := make([][]string, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			strconv.Itoa(s.SortOrder),
			s.Name,
		})
	}
	return table(w, "ID\tORDER\tNAME", rows)
}
