package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/brainkit/internal/brainapi"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show predictive analytics with your top recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		var (
			stats *brainapi.PredictiveAnalytics
			recs  []brainapi.CourseRecommendation
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			stats, err = s.client.Analytics(ctx, s.cfg.UserID)
			if err != nil {
				return fmt.Errorf("fetch analytics: %w", err)
			}
			return nil
		})
		if limit > 0 {
			g.Go(func() error {
				var err error
				recs, err = s.client.Recommendations(ctx, brainapi.RecommendationQuery{UserID: s.cfg.UserID, Limit: limit})
				if err != nil {
					return fmt.Errorf("fetch recommendations: %w", err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, struct {
				Analytics       *brainapi.PredictiveAnalytics   `json:"analytics"`
				Recommendations []brainapi.CourseRecommendation `json:"recommendations,omitempty"`
			}{stats, recs})
		}

		fmt.Fprintf(out, "Predicted score:        %.0f\n", stats.PredictedScore)
		fmt.Fprintf(out, "Completion probability: %.0f%%\n", stats.CompletionProbability*100)
		fmt.Fprintf(out, "Recommended study time: %d min/day\n", stats.RecommendedStudyTime)
		if stats.EngagementTrend != "" {
			fmt.Fprintf(out, "Engagement trend:       %s\n", stats.EngagementTrend)
		}
		printList(out, "Strengths", stats.StrengthAreas)
		printList(out, "Improvement areas", stats.ImprovementAreas)
		printList(out, "At-risk courses", stats.AtRiskCourses)

		if len(recs) > 0 {
			fmt.Fprintln(out)
			printRecommendations(out, recs)
		}
		return nil
	},
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%-23s %s\n", label+":", strings.Join(items, ", "))
}

var engagementCmd = &cobra.Command{
	Use:   "record <metric> <value>",
	Short: "Record an engagement metric (study_minutes, quiz_score or lesson_completed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		meta, _ := cmd.Flags().GetStringToString("meta")

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		err = s.client.RecordEngagement(cmd.Context(), brainapi.EngagementMetric{
			UserID:     s.cfg.UserID,
			MetricType: args[0],
			Value:      value,
			Metadata:   meta,
		})
		if err != nil {
			return fmt.Errorf("record engagement: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s = %g.\n", args[0], value)
		return nil
	},
}

func init() {
	analyticsCmd.Flags().IntP("limit", "n", 3, "Recommendations to show alongside (0 for none)")
	engagementCmd.Flags().StringToString("meta", nil, "Metadata as key=value, e.g. skill=embeddings")
	analyticsCmd.AddCommand(engagementCmd)
}
