package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/query"
)

var assessCmd = &cobra.Command{
	Use:   "assess <skill=score>...",
	Short: "Submit graded results and get a skill assessment",
	Long: "Submit graded results and get a skill assessment. Scores may be fractions " +
		"(0.8), percentages (80%) or points (8/10); repeat a skill to average several results.",
	Example: "  brainkit assess embeddings=0.9 retrieval=6/10 prompting=45%",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := parseResults(args)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		hook := query.NewSkillAssessment(s.client, query.AssessmentParams{UserID: s.cfg.UserID}, s.hookOptions(cmd)...)
		defer hook.Close()
		if err := hook.Assess(results); err != nil {
			return err
		}
		hook.Wait()

		st := hook.State()
		if st.Err != nil {
			return fmt.Errorf("assess skills: %w", st.Err)
		}
		a := st.Data

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, a)
		}

		fmt.Fprintf(out, "Overall: %.0f%%\n\n", a.OverallScore*100)
		skills := make([]string, 0, len(a.SkillScores))
		for k := range a.SkillScores {
			skills = append(skills, k)
		}
		sort.Strings(skills)
		for _, k := range skills {
			v := a.SkillScores[k]
			bar := strings.Repeat("█", int(v*20+0.5))
			fmt.Fprintf(out, "  %-20s %-20s %3.0f%%\n", truncate(k, 20), bar, v*100)
		}
		fmt.Fprintln(out)
		printList(out, "Strengths", a.StrengthAreas)
		printList(out, "Growth areas", a.GrowthAreas)
		if len(a.Recommendations) > 0 {
			fmt.Fprintln(out, "\nNext steps:")
			for _, r := range a.Recommendations {
				fmt.Fprintf(out, "  - %s\n", r)
			}
		}
		return nil
	},
}

func parseResults(args []string) ([]brainapi.AssessmentResult, error) {
	results := make([]brainapi.AssessmentResult, 0, len(args))
	for _, arg := range args {
		skill, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(skill) == "" {
			return nil, fmt.Errorf("invalid result %q: want skill=score", arg)
		}
		score, maxScore, err := parseScore(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid score in %q: %w", arg, err)
		}
		results = append(results, brainapi.AssessmentResult{
			Skill:    strings.TrimSpace(skill),
			Score:    score,
			MaxScore: maxScore,
		})
	}
	return results, nil
}

var gapCmd = &cobra.Command{
	Use:     "gap <role...>",
	Short:   "Compare your skills against a target role",
	Example: "  brainkit assess gap ML Engineer",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		hook := query.NewSkillGap(s.client, query.SkillGapParams{
			UserID:     s.cfg.UserID,
			TargetRole: strings.Join(args, " "),
		}, s.hookOptions(cmd)...)
		defer hook.Close()
		hook.Wait()

		st := hook.State()
		if st.Err != nil {
			return fmt.Errorf("analyze skill gap: %w", st.Err)
		}
		g := st.Data

		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, g)
		}

		fmt.Fprintf(out, "Role:      %s\n", g.TargetRole)
		fmt.Fprintf(out, "Readiness: %.0f%%\n\n", g.Readiness*100)
		if len(g.Gaps) == 0 {
			fmt.Fprintln(out, "No gaps: you meet every required level.")
		} else {
			fmt.Fprintf(out, "  %-24s %7s %8s %5s\n", "Skill", "Current", "Required", "Gap")
			for _, gap := range g.Gaps {
				fmt.Fprintf(out, "  %-24s %6.0f%% %7.0f%% %4.0f%%\n",
					truncate(gap.Skill, 24), gap.Current*100, gap.Required*100, gap.Gap*100)
			}
		}
		if len(g.RecommendedCourses) > 0 {
			fmt.Fprintln(out)
			printList(out, "Courses", g.RecommendedCourses)
		}
		return nil
	},
}

func init() {
	assessCmd.AddCommand(gapCmd)
}
