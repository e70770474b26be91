package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brainkit/internal/llm"
	"github.com/abhisek/brainkit/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect recorded backend and LLM calls",
}

// withStore loads config and opens the event store for fn.
func withStore(cmd *cobra.Command, fn func(repo store.EventRepo, out io.Writer) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s.EventRepo(), cmd.OutOrStdout())
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent backend calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		endpoint, _ := cmd.Flags().GetString("endpoint")

		return withStore(cmd, func(repo store.EventRepo, out io.Writer) error {
			events, err := repo.QueryRequests(cmd.Context(), store.QueryOpts{Limit: limit, Endpoint: endpoint})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if wantJSON(cmd) {
				return printJSON(out, events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-6s  %-28s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Method", "Endpoint", "Status", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 88))
			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				status := "-"
				if e.StatusCode != 0 {
					status = strconv.Itoa(e.StatusCode)
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-6s  %-28s  %-6s  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Method,
					truncate(e.Endpoint, 28),
					status,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})
	},
}

var eventsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one recorded backend call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withStore(cmd, func(repo store.EventRepo, out io.Writer) error {
			e, err := repo.GetRequest(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}
			if wantJSON(cmd) {
				return printJSON(out, e)
			}

			fmt.Fprintf(out, "ID:        %d\n", e.ID)
			fmt.Fprintf(out, "Sequence:  %d\n", e.Sequence)
			fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Request:   %s %s\n", e.Method, e.Endpoint)
			fmt.Fprintf(out, "Status:    %d\n", e.StatusCode)
			fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(out, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
			}
			return nil
		})
	},
}

var eventsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize backend calls by endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(repo store.EventRepo, out io.Writer) error {
			usage, err := repo.UsageByEndpoint(cmd.Context())
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if wantJSON(cmd) {
				return printJSON(out, usage)
			}
			if len(usage) == 0 {
				fmt.Fprintln(out, "No backend calls recorded yet.")
				return nil
			}

			fmt.Fprintf(out, "%-28s  %8s  %8s  %8s  %8s\n", "Endpoint", "Calls", "Failed", "Error %", "Avg Ms")
			fmt.Fprintln(out, strings.Repeat("─", 70))
			var calls, failed int
			for _, u := range usage {
				fmt.Fprintf(out, "%-28s  %8d  %8d  %7.1f%%  %8.0f\n",
					truncate(u.Endpoint, 28), u.Requests, u.Failures,
					100*float64(u.Failures)/float64(u.Requests), u.AvgLatencyMs)
				calls += u.Requests
				failed += u.Failures
			}
			fmt.Fprintln(out, strings.Repeat("─", 70))
			fmt.Fprintf(out, "%-28s  %8d  %8d\n", "TOTAL", calls, failed)
			return nil
		})
	},
}

var eventsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Show LLM calls made by the reference backend and their estimated cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withStore(cmd, func(repo store.EventRepo, out io.Writer) error {
			events, err := repo.QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 100))
			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}

			usage, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Estimated Cost (USD)")
			fmt.Fprintln(out, strings.Repeat("─", 72))
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
			fmt.Fprintln(out, strings.Repeat("─", 72))

			var totalCost float64
			var unknownModels []string
			for _, mu := range usage {
				cost := llm.LookupCost(mu.Model)
				if cost == nil {
					unknownModels = append(unknownModels, mu.Model)
					fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
						truncate(mu.Model, 32), mu.Requests, mu.InputTokens, mu.OutputTokens, "?")
					continue
				}
				c := cost.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Requests, mu.InputTokens, mu.OutputTokens, formatCost(c))
			}

			fmt.Fprintln(out, strings.Repeat("─", 72))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
			if len(unknownModels) > 0 {
				fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
			}
			return nil
		})
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsListCmd.Flags().String("endpoint", "", "Only show calls to this endpoint, e.g. /recommendations")
	eventsLLMCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsLLMCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. learning-path, tutor)")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsViewCmd)
	eventsCmd.AddCommand(eventsStatsCmd)
	eventsCmd.AddCommand(eventsLLMCmd)
}
