package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/brainapi"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "brainkit %s (API %s)\n", version, brainapi.APIVersion)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}

		s, err := openSession(cmd, cmd.ErrOrStderr(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		h, err := s.client.Health(cmd.Context())
		if h != nil {
			fmt.Fprintf(out, "backend  %s: %s (API %s)\n", s.client.BaseURL(), h.Status, h.APIVersion)
		}
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also check that the backend is reachable and compatible")
}
