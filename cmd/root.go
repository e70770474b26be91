package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "brainkit",
	Short:        "Brain AI learning companion",
	Long:         "brainkit is a terminal client for the Brain AI learning backend. It also ships a reference backend for development.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default: brainkit.yaml in the working or user config dir)")
	pf.String("db", "", "Path to SQLite database file (overrides BRAINKIT_DB env var)")
	pf.StringP("user", "u", "", "Learner ID (overrides user_id)")
	pf.String("api", "", "Backend base URL (overrides api.base_url)")
	pf.Bool("json", false, "Print results as JSON")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
	rootCmd.Flags().String("metrics-addr", "", "Serve client metrics on this address while the UI runs")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(serveCmd)
}
