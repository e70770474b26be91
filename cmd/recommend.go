package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "List recommended courses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		filters, _ := cmd.Flags().GetStringToString("filter")
		targets, _ := cmd.Flags().GetStringSlice("target-skill")

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		var recs []brainapi.CourseRecommendation
		if len(targets) > 0 {
			recs, err = s.client.SkillBasedRecommendations(cmd.Context(), brainapi.SkillRecommendationRequest{
				UserID:       s.cfg.UserID,
				TargetSkills: targets,
				Limit:        limit,
			})
		} else {
			recs, err = s.client.Recommendations(cmd.Context(), brainapi.RecommendationQuery{
				UserID:  s.cfg.UserID,
				Limit:   limit,
				Filters: filters,
			})
		}
		if err != nil {
			return fmt.Errorf("fetch recommendations: %w", err)
		}

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, recs)
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No recommendations found.")
			return nil
		}
		printRecommendations(out, recs)
		return nil
	},
}

func printRecommendations(out io.Writer, recs []brainapi.CourseRecommendation) {
	fmt.Fprintf(out, "%-12s  %-36s  %5s  %s\n", "Course", "Name", "Match", "Reason")
	fmt.Fprintln(out, strings.Repeat("─", 100))
	for _, r := range recs {
		fmt.Fprintf(out, "%-12s  %-36s  %4d%%  %s\n",
			truncate(r.CourseID, 12), truncate(r.CourseName, 36), r.MatchPercentage, r.Reason)
	}
}

var interactCmd = &cobra.Command{
	Use:       "interact <course-id> <viewed|enrolled|dismissed>",
	Short:     "Record how you reacted to a recommended course",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"viewed", "enrolled", "dismissed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := brainapi.InteractionType(args[1])
		switch kind {
		case brainapi.InteractionViewed, brainapi.InteractionEnrolled, brainapi.InteractionDismissed:
		default:
			return fmt.Errorf("unknown interaction %q: want viewed, enrolled or dismissed", args[1])
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		err = s.client.RecordInteraction(cmd.Context(), brainapi.Interaction{
			UserID:          s.cfg.UserID,
			CourseID:        args[0],
			InteractionType: kind,
		})
		if err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s.\n", kind, args[0])
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntP("limit", "n", 5, "Number of recommendations")
	recommendCmd.Flags().StringToString("filter", nil, "Filter as key=value (category, difficulty, min_rating)")
	recommendCmd.Flags().StringSlice("target-skill", nil, "Rank courses by the skills they teach instead of your profile (repeatable)")
	recommendCmd.AddCommand(interactCmd)
}
