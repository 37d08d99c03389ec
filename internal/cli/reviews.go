package cli

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/371050/study-pwa/internal/domain"
)

func newReviewsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Inspect and edit a unit's review ledger",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <unit-id>",
			Short: "List a unit's reviews",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					return printReviews(cmd, env, p, unitID)
				})
			},
		},
		&cobra.Command{
			Use:   "next <unit-id>",
			Short: "Print the next review number of a unit",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					no, err := env.Ledger.GetNextReviewNo(cmd.Context(), unitID)
					if err != nil {
						return err
					}
					data := struct {
						UnitID   int64 `json:"unitId"`
						ReviewNo int   `json:"reviewNo"`
					}{unitID, no}
					return p.print(data, func(w io.Writer) error {
						_, err := io.WriteString(w, strconv.Itoa(no)+"\n")
						return err
					})
				})
			},
		},
		&cobra.Command{
			Use:   "add <unit-id> <review-no> <YYYY-MM-DD>",
			Short: "Record a review with an explicit number and date",
			Args:  exactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				no, err := parseNo(args[1])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					review, err := env.Ledger.InsertReview(cmd.Context(), unitID, no, args[2])
					if err != nil {
						return err
					}
					return p.print(review, func(w io.Writer) error {
						return writeReviews(w, []domain.Review{*review})
					})
				})
			},
		},
		&cobra.Command{
			Use:   "update <review-id> <unit-id> <review-no> <YYYY-MM-DD>",
			Short: "Change a review's number and date",
			Args:  exactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				reviewID, err := parseID("review id", args[0])
				if err != nil {
					return err
				}
				unitID, err := parseID("unit id", args[1])
				if err != nil {
					return err
				}
				no, err := parseNo(args[2])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, _ printer) error {
					return env.Ledger.UpdateReview(cmd.Context(), reviewID, unitID, no, args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "delete <review-id>",
			Short: "Delete a review",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reviewID, err := parseID("review id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, _ printer) error {
					return env.Ledger.DeleteReview(cmd.Context(), reviewID)
				})
			},
		},
		&cobra.Command{
			Use:   "renumber <unit-id>",
			Short: "Renumber a unit's reviews 1..n in date order",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				unitID, err := parseID("unit id", args[0])
				if err != nil {
					return err
				}
				return opts.withEnv(cmd, func(env *Env, p printer) error {
					if err := env.Ledger.RenumberReviews(cmd.Context(), unitID); err != nil {
						return err
					}
					return printReviews(cmd, env, p, unitID)
				})
			},
		},
	)
	return cmd
}

func printReviews(cmd *cobra.Command, env *Env, p printer, unitID int64) error {
	reviews, err := env.Ledger.ListReviewsByUnit(cmd.Context(), unitID)
	if err != nil {
		return err
	}
	return p.print(reviews, func(w io.Writer) error {
		return writeReviews(w, reviews)
	})
}

func writeReviews(w io.Writer, reviews []domain.Review) error {
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.Itoa(r.ReviewNo),
			r.DoneDate,
		})
	}
	return table(w, "ID\tNO\tDATE", rows)
}
