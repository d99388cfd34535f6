package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravity-outreach/hiring-detector/internal/runner"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

func TestPrintResult(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	result := types.NewHiringResult("https://acme.io/careers",
		[]string{"Backend Engineer", "Designer"}, "Hiring across teams.", "Playwright + Gemini")
	printer.PrintResult(types.Company{Name: "Acme"}, result)

	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Hiring:   yes")
	assert.Contains(t, out, "Playwright + Gemini")
	assert.Contains(t, out, "- Backend Engineer")
}

func TestPrintResult_TruncatesRoleList(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	roles := []string{"A1 Role", "B2 Role", "C3 Role", "D4 Role", "E5 Role", "F6 Role", "G7 Role"}
	result := types.NewHiringResult("https://acme.io/careers", roles, "", "Greenhouse API")
	printer.PrintResult(types.Company{Name: "Acme"}, result)

	out := buf.String()
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "G7 Role")
}

func TestPrintResult_NilResult(t *testing.T) {
	var buf strings.Builder
	NewPrinter(&buf).PrintResult(types.Company{Name: "Acme"}, nil)
	assert.Empty(t, buf.String())
}

func TestPrintBatchSummary(t *testing.T) {
	var buf strings.Builder
	printer := NewPrinter(&buf)

	printer.PrintBatchSummary([]runner.Outcome{
		{Result: types.NewHiringResult("", []string{"Engineer"}, "", "Greenhouse API")},
		{Result: types.NotHiringResult("", "nothing open", "Playwright")},
		{Result: types.NotHiringResult("", "Error: timeout", "failed")},
	})

	out := buf.String()
	assert.Contains(t, out, "Checked:  3")
	assert.Contains(t, out, "Hiring:   1")
	assert.Contains(t, out, "Failed:   1")
	assert.Contains(t, out, "Greenhouse API")
}
