package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service/ingest"
)

func newRecordCommand(opts *RootOptions) *cobra.Command {
	var (
		title     string
		reviewNo  int
		date      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "record <subject-id> <code>",
		Short: "Record one review, creating the unit when needed",
		Long: `Record one review of a unit.

The unit is created when the subject has no unit with the code. Without
--no the unit's next review number is used; without --date, today.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, err := parseID("subject id", args[0])
			if err != nil {
				return err
			}
			req := ingest.RecordRequest{
				SubjectID: subjectID,
				UnitCode:  args[1],
				Title:     title,
				DoneDate:  date,
				Overwrite: overwrite,
			}
			if cmd.Flags().Changed("no") {
				if reviewNo <= 0 {
					return usageError("invalid --no %d: must be a positive integer", reviewNo)
				}
				req.ReviewNo = &reviewNo
			}

			return opts.withEnv(cmd, func(env *Env, p printer) error {
				if req.DoneDate == "" {
					req.DoneDate = env.Schedule.Today()
				}
				review, err := env.Entries.Record(cmd.Context(), req)
				if err != nil {
					return err
				}
				return p.print(review, func(w io.Writer) error {
					return writeReviews(w, []domain.Review{*review})
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "unit title")
	cmd.Flags().IntVar(&reviewNo, "no", 0, "review number (default: next)")
	cmd.Flags().StringVar(&date, "date", "", "review date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing title")
	return cmd
}

func newIngestCommand(opts *RootOptions) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "ingest <subject-id> [entries...]",
		Short: "Record today's review for every entry in a list",
		Long: `Record today's review for every entry in a list such as
"1-1:Introduction, 2-3". Entries are read from the arguments, or from
standard input when none are given.`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, err := parseID("subject id", args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if len(args) == 1 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read entries: %w", err)
				}
				text = string(raw)
			}

			return opts.withEnv(cmd, func(env *Env, p printer) error {
				result, err := env.Entries.Apply(cmd.Context(), subjectID, text, overwrite)
				if err != nil {
					return err
				}
				return p.print(result, func(w io.Writer) error {
					return writeIngest(w, result)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing titles")
	return cmd
}

func writeIngest(w io.Writer, result *ingest.Result) error {
	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		no := "-"
		if e.ReviewNo > 0 {
			no = strconv.Itoa(e.ReviewNo)
		}
		var notes []string
		if e.Created {
			notes = append(notes, "new unit")
		}
		if e.Retitled {
			notes = append(notes, "titled")
		}
		outcome := string(e.Outcome)
		if len(notes) > 0 {
			outcome += " (" + strings.Join(notes, ", ") + ")"
		}
		rows = append(rows, []string{e.Code, no, outcome})
	}
	if err := table(w, "CODE\tNO\tOUTCOME", rows); err != nil {
		return err
	}

	summary := fmt.Sprintf("%s: recorded %d, skipped %d, invalid %d",
		result.DoneDate, result.Recorded(), result.Skipped(), len(result.Invalid))
	if len(result.Invalid) > 0 {
		summary += " (" + strings.Join(result.Invalid, ", ") + ")"
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
