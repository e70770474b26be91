package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
)

var pathCmd = &cobra.Command{
	Use:   "path <goal...>",
	Short: "Generate a learning path toward a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringToString("skill")
		skills := make(map[string]float64, len(raw))
		for name, v := range raw {
			score, maxScore, err := parseScore(v)
			if err != nil {
				return fmt.Errorf("invalid level for skill %q: %w", name, err)
			}
			if maxScore > 0 {
				score /= maxScore
			}
			skills[name] = score
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		lp, err := s.client.GenerateLearningPath(cmd.Context(), brainapi.LearningPathRequest{
			UserID:        s.cfg.UserID,
			TargetGoal:    strings.Join(args, " "),
			CurrentSkills: skills,
		})
		if err != nil {
			return fmt.Errorf("generate learning path: %w", err)
		}

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, lp)
		}

		if lp.ID != "" {
			fmt.Fprintf(out, "Path:      %s\n", lp.ID)
		}
		fmt.Fprintf(out, "Goal:      %s\n", lp.TargetGoal)
		fmt.Fprintf(out, "Estimated: %s\n", lp.EstimatedDuration)
		fmt.Fprintln(out)
		for i, m := range lp.Milestones {
			icon := "○"
			switch m.Status {
			case brainapi.MilestoneCompleted:
				icon = "✓"
			case brainapi.MilestoneInProgress:
				icon = "▸"
			}
			fmt.Fprintf(out, "%s %2d. %-44s %s\n", icon, i+1, truncate(m.Title, 44), m.EstimatedDuration)
		}
		if len(lp.SkillGaps) > 0 {
			fmt.Fprintf(out, "\nSkill gaps: %s\n", strings.Join(lp.SkillGaps, ", "))
		}
		if len(lp.RecommendedResources) > 0 {
			fmt.Fprintln(out, "\nResources:")
			for _, r := range lp.RecommendedResources {
				fmt.Fprintf(out, "  - %s (%s)\n", r.Title, r.Type)
			}
		}
		return nil
	},
}

var pathStatusCmd = &cobra.Command{
	Use:   "status <path-id>",
	Short: "Show progress along a learning path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.client.LearningPathStatus(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch path status: %w", err)
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, st)
		}
		fmt.Fprintf(out, "Goal:      %s\n", st.TargetGoal)
		fmt.Fprintf(out, "Progress:  %d/%d (%.0f%%)\n", st.CompletedCount, st.TotalMilestones, st.Progress*100)
		if st.CurrentMilestone != "" {
			fmt.Fprintf(out, "Current:   %s\n", st.CurrentMilestone)
		}
		fmt.Fprintf(out, "Remaining: %s\n", st.EstimatedRemaining)
		return nil
	},
}

var pathCompleteCmd = &cobra.Command{
	Use:   "complete <path-id> <milestone-or-module-id>...",
	Short: "Mark milestones of a learning path as done",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		lp, err := s.client.UpdateLearningPath(cmd.Context(), brainapi.LearningPathUpdate{
			PathID:           args[0],
			CompletedModules: args[1:],
		})
		if err != nil {
			return fmt.Errorf("update learning path: %w", err)
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, lp)
		}
		done := 0
		for _, m := range lp.Milestones {
			if m.Status == brainapi.MilestoneCompleted {
				done++
			}
		}
		fmt.Fprintf(out, "%d of %d milestones complete. %s left.\n", done, len(lp.Milestones), lp.EstimatedDuration)
		return nil
	},
}

func init() {
	pathCmd.AddCommand(pathStatusCmd)
	pathCmd.AddCommand(pathCompleteCmd)
	pathCmd.Flags().StringToString("skill", nil, "Current skill level as name=score (0.7, 70% or 7/10)")
}
