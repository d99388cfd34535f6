package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/observability"
	"github.com/gravity-outreach/hiring-detector/internal/runner"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check a batch of companies from a CSV or JSON file",
	Long: "Runs the detection pipeline for every company in the input file with bounded " +
		"concurrency and per-company retry, writing the results as a JSON array.",
	RunE: runBatch,
}

var (
	batchInput  string
	batchOutput string
)

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Input file: .csv with name,website columns or .json array (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output JSON file (default: stdout)")

	if err := batchCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	companies, err := loadCompanies(batchInput)
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		return fmt.Errorf("no companies found in %s", batchInput)
	}

	application, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer application.close()

	application.logger.Info("starting batch",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", application.cfg.Concurrency))

	var sink runner.ResultSink
	if application.store != nil {
		sink = application.store
	}
	batchRunner := runner.New(application.checker, sink, runner.Options{
		Concurrency: application.cfg.Concurrency,
		MaxAttempts: application.cfg.MaxAttempts,
	}, application.logger)

	outcomes, err := batchRunner.Run(ctx, companies)
	if err != nil {
		return fmt.Errorf("batch aborted: %w", err)
	}
	if application.cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintBatchSummary(outcomes)
	}

	out, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}
	if batchOutput == "" {
		cmd.Println(string(out))
		return nil
	}
	if err := os.WriteFile(batchOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", batchOutput, err)
	}
	application.logger.Info("batch complete", zap.String("output", batchOutput))
	return nil
}

// loadCompanies reads the input batch. CSV needs name and website
// columns in either order; JSON is an array of company objects.
func loadCompanies(path string) ([]types.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		var companies []types.Company
		if err := json.Unmarshal(data, &companies); err != nil {
			return nil, fmt.Errorf("failed to parse JSON input: %w", err)
		}
		return companies, nil
	}
	return parseCompanyCSV(strings.NewReader(string(data)))
}

func parseCompanyCSV(r io.Reader) ([]types.Company, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	nameCol, websiteCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name", "company", "company_name":
			nameCol = i
		case "website", "url", "domain":
			websiteCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("CSV header has no name column (got %v)", header)
	}

	var companies []types.Company
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		company := types.Company{Name: strings.TrimSpace(record[nameCol])}
		if websiteCol >= 0 && websiteCol < len(record) {
			company.Website = strings.TrimSpace(record[websiteCol])
		}
		if company.Name != "" {
			companies = append(companies, company)
		}
	}
	return companies, nil
}
