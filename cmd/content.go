package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Summarize lesson material, pull out key concepts or build a quiz",
}

// readContent returns the text of the named file, or stdin for "-".
func readContent(cmd *cobra.Command, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return text, nil
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file|->",
	Short: "Summarize lesson material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxLen, _ := cmd.Flags().GetInt("max-length")
		kind, _ := cmd.Flags().GetString("type")
		text, err := readContent(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.client.SummarizeContent(cmd.Context(), brainapi.SummaryRequest{
			Content:     text,
			ContentType: kind,
			MaxLength:   maxLen,
		})
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, map[string]string{"summary": summary})
		}
		fmt.Fprintln(out, summary)
		return nil
	},
}

var conceptsCmd = &cobra.Command{
	Use:   "concepts <file|->",
	Short: "List the key concepts in lesson material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		text, err := readContent(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		concepts, err := s.client.ExtractConcepts(cmd.Context(), brainapi.ConceptsRequest{Content: text, NumConcepts: n})
		if err != nil {
			return fmt.Errorf("extract concepts: %w", err)
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, concepts)
		}
		for _, c := range concepts {
			fmt.Fprintf(out, "%-24s %s\n", truncate(c.Term, 24), c.Definition)
		}
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <file|->",
	Short: "Generate multiple-choice questions from lesson material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		text, err := readContent(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		qs, err := s.client.GenerateQuiz(cmd.Context(), brainapi.QuizRequest{
			Content:      text,
			NumQuestions: n,
			Difficulty:   difficulty,
		})
		if err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, qs)
		}
		for i, q := range qs {
			fmt.Fprintf(out, "%d. %s\n", i+1, q.Question)
			for j, o := range q.Options {
				mark := " "
				if j == q.Answer {
					mark = "*"
				}
				fmt.Fprintf(out, "  %s %c) %s\n", mark, 'a'+j, o)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	summarizeCmd.Flags().Int("max-length", 200, "Longest summary in characters")
	summarizeCmd.Flags().String("type", brainapi.ContentText, "Content type: text, video or document")
	conceptsCmd.Flags().IntP("count", "n", 5, "Number of concepts")
	quizCmd.Flags().IntP("count", "n", 5, "Number of questions")
	quizCmd.Flags().String("difficulty", "medium", "easy, medium or hard")

	contentCmd.AddCommand(summarizeCmd)
	contentCmd.AddCommand(conceptsCmd)
	contentCmd.AddCommand(quizCmd)
}
