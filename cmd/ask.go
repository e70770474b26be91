package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/query"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the AI tutor a question",
	Long: "Ask the AI tutor a question. When tutor.persist is on, the conversation " +
		"continues across invocations until --reset.",
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, _ := cmd.Flags().GetString("content")
		reset, _ := cmd.Flags().GetBool("reset")
		question := strings.Join(args, " ")
		if question == "" && !reset {
			return fmt.Errorf("a question is required")
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.requireUser(); err != nil {
			return err
		}

		opts := s.hookOptions(cmd)
		if repo := s.transcript(); repo != nil {
			opts = append(opts, query.WithTranscript(repo))
		}
		tutor := query.NewTutor(s.client, query.TutorParams{
			UserID:         s.cfg.UserID,
			CurrentContent: content,
			MaxHistory:     s.cfg.Tutor.MaxHistory,
		}, opts...)
		defer tutor.Close()

		out := cmd.OutOrStdout()
		if reset {
			tutor.Clear()
			if question == "" {
				fmt.Fprintln(out, "Conversation cleared.")
				return nil
			}
		} else if err := tutor.Restore(cmd.Context()); err != nil {
			s.logger.Warn("could not restore the previous conversation", zap.Error(err))
		}

		if err := tutor.Send(question); err != nil {
			return err
		}
		tutor.Wait()

		st := tutor.State()
		if st.Err != nil {
			return fmt.Errorf("ask tutor: %w", st.Err)
		}
		reply := st.Messages[len(st.Messages)-1]

		if wantJSON(cmd) {
			return printJSON(out, struct {
				Response        string   `json:"response"`
				SuggestedTopics []string `json:"suggestedTopics,omitempty"`
			}{reply.Content, st.SuggestedTopics})
		}
		fmt.Fprintln(out, reply.Content)
		if len(st.SuggestedTopics) > 0 {
			fmt.Fprintf(out, "\nExplore next: %s\n", strings.Join(st.SuggestedTopics, " · "))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("content", "", "What you are studying, sent as context")
	askCmd.Flags().Bool("reset", false, "Start a new conversation")
}
