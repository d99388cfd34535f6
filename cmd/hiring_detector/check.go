package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/observability"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a single company is hiring",
	Long:  "Runs the full detection pipeline for one company and prints the result as JSON.",
	RunE:  runCheck,
}

var (
	checkName    string
	checkWebsite string
)

func init() {
	checkCmd.Flags().StringVarP(&checkName, "name", "n", "", "Company name (required)")
	checkCmd.Flags().StringVarP(&checkWebsite, "website", "w", "", "Company website or career page URL")

	if err := checkCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	application, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	company := types.Company{Name: checkName, Website: checkWebsite}
	result := application.checker.Check(ctx, company)

	if application.store != nil {
		if err := application.store.SaveResult(ctx, company, result); err != nil {
			application.logger.Warn("failed to persist result", zap.Error(err))
		}
	}

	if application.cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintResult(company, result)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
