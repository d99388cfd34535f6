// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/gravity-outreach/hiring-detector/internal/runner"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxRolesToShow is the default number of job roles to display
	maxRolesToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs a human-readable summary of one hiring check.
func (p *Printer) PrintResult(company types.Company, result *types.HiringResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hiring:   %s\n", yesNo(result.IsHiring)))
	sb.WriteString(fmt.Sprintf("Method:   %s\n", result.DetectionMethod))
	if result.CareerPageURL != "" {
		sb.WriteString(fmt.Sprintf("Page:     %s\n", result.CareerPageURL))
	}
	if result.JobCount > 0 {
		sb.WriteString(fmt.Sprintf("Roles:    %d open\n", result.JobCount))
		for i, role := range result.JobRoles {
			if i == maxRolesToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", result.JobCount-maxRolesToShow))
				break
			}
			sb.WriteString(fmt.Sprintf("  - %s\n", role))
		}
	}
	if result.HiringSummary != "" {
		sb.WriteString("\n")
		sb.WriteString(result.HiringSummary)
	}

	p.printBox(company.Name, strings.TrimRight(sb.String(), "\n"))
}

// PrintBatchSummary outputs aggregate counts for a completed batch.
func (p *Printer) PrintBatchSummary(outcomes []runner.Outcome) {
	hiring := 0
	failed := 0
	byMethod := make(map[string]int)
	for _, outcome := range outcomes {
		if outcome.Result == nil {
			continue
		}
		if outcome.Result.IsHiring {
			hiring++
		}
		if outcome.Result.DetectionMethod == "failed" {
			failed++
		}
		byMethod[outcome.Result.DetectionMethod]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checked:  %d companies\n", len(outcomes)))
	sb.WriteString(fmt.Sprintf("Hiring:   %d\n", hiring))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", failed))
	sb.WriteString("\nBy detection method:\n")
	for method, count := range byMethod {
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", method, count))
	}

	p.printBox("Batch summary", strings.TrimRight(sb.String(), "\n"))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
