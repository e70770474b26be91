package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search courses, modules and discussions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suggest, _ := cmd.Flags().GetBool("suggest")
		limit, _ := cmd.Flags().GetInt("limit")
		userContext, _ := cmd.Flags().GetStringToString("context")
		q := strings.Join(args, " ")

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if suggest {
			suggestions, err := s.client.SearchSuggestions(cmd.Context(), q, limit)
			if err != nil {
				return fmt.Errorf("fetch suggestions: %w", err)
			}
			if wantJSON(cmd) {
				return printJSON(out, suggestions)
			}
			for _, sg := range suggestions {
				fmt.Fprintln(out, sg)
			}
			return nil
		}

		results, err := s.client.Search(cmd.Context(), brainapi.SearchRequest{Query: q, UserContext: userContext})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if wantJSON(cmd) {
			return printJSON(out, results)
		}
		if len(results) == 0 {
			fmt.Fprintf(out, "No results for %q.\n", q)
			return nil
		}

		fmt.Fprintf(out, "%-10s  %-44s  %5s\n", "Type", "Title", "Score")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for i, r := range results {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Fprintf(out, "%-10s  %-44s  %4.0f%%\n", r.Type, truncate(r.Title, 44), r.RelevanceScore*100)
			if r.Snippet != "" {
				fmt.Fprintf(out, "%-10s  %s\n", "", truncate(r.Snippet, 80))
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Bool("suggest", false, "Print completions for the query instead of results")
	searchCmd.Flags().IntP("limit", "n", 10, "Maximum results or suggestions")
	searchCmd.Flags().StringToString("context", nil, "Ranking context as key=value, e.g. course=course-2")
}
