package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravity-outreach/hiring-detector/internal/config"
	"github.com/gravity-outreach/hiring-detector/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query stored check results",
	Long: "Reads past check results from the database as JSON. Requires DATABASE_URL. " +
		"With --latest, shows only the most recent check for a company; with --clear, " +
		"deletes every stored check for a company.",
	RunE: runHistory,
}

var (
	historyName       string
	historyMethod     string
	historyHiringOnly bool
	historyLimit      int
	historyLatest     bool
	historyClear      bool
)

func init() {
	historyCmd.Flags().StringVarP(&historyName, "name", "n", "", "Filter by company name (substring match; exact for --latest/--clear)")
	historyCmd.Flags().StringVarP(&historyMethod, "method", "m", "", "Filter by detection method")
	historyCmd.Flags().BoolVar(&historyHiringOnly, "hiring-only", false, "Only show checks that found open positions")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 50, "Maximum number of records")
	historyCmd.Flags().BoolVar(&historyLatest, "latest", false, "Show only the most recent check for --name")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all stored checks for --name")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := validateHistoryFlags(historyLatest, historyClear, historyName); err != nil {
		return err
	}

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("history requires DATABASE_URL to be set")
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	switch {
	case historyClear:
		deleted, err := st.DeleteChecks(ctx, historyName)
		if err != nil {
			return err
		}
		cmd.Printf("Deleted %d checks for %s\n", deleted, historyName)
		return nil
	case historyLatest:
		record, err := st.GetLatest(ctx, historyName)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("no checks recorded for %s", historyName)
		}
		return printHistoryJSON(cmd, record)
	default:
		records, err := st.ListChecks(ctx, store.CheckFilters{
			Company:    historyName,
			Method:     historyMethod,
			OnlyHiring: historyHiringOnly,
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}
		if records == nil {
			records = []store.CheckRecord{}
		}
		return printHistoryJSON(cmd, records)
	}
}

// validateHistoryFlags rejects flag combinations before touching the
// database. --latest and --clear both operate on a single company, so
// each needs --name, and they contradict each other.
func validateHistoryFlags(latest, clear bool, name string) error {
	if latest && clear {
		return fmt.Errorf("--latest and --clear are mutually exclusive")
	}
	if (latest || clear) && name == "" {
		return fmt.Errorf("--latest and --clear require --name")
	}
	return nil
}

func printHistoryJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
