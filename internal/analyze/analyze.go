// Package analyze turns raw career page content into structured hiring
// signals using an LLM. Analysis never fails the pipeline: malformed or
// missing model output degrades to a conservative not-hiring answer,
// and job list filtering degrades to the raw input.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/llm"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// MaxContentLength caps how much page text is sent to the model.
const MaxContentLength = 10000

// errDisabled is the verdict reason when no LLM client is configured.
var errDisabled = errors.New("LLM analysis disabled: no API key configured")

// PageAnalysis is the structured verdict for a single career page.
type PageAnalysis struct {
	IsHiring      bool     `json:"is_hiring"`
	JobRoles      []string `json:"job_roles"`
	JobCount      int      `json:"job_count"`
	HiringSummary string   `json:"hiring_summary"`
}

// pageAnalysisSchema validates the model's career page response before
// it is trusted.
const pageAnalysisSchema = `{
	"type": "object",
	"required": ["is_hiring", "job_roles", "hiring_summary"],
	"properties": {
		"is_hiring": {"type": "boolean"},
		"job_roles": {"type": "array", "items": {"type": "string"}},
		"job_count": {"type": "number"},
		"hiring_summary": {"type": "string"}
	}
}`

// jobListSchema validates the model's title filtering response.
const jobListSchema = `{
	"type": "object",
	"required": ["job_roles"],
	"properties": {
		"job_roles": {"type": "array", "items": {"type": "string"}},
		"hiring_summary": {"type": "string"}
	}
}`

// Extractor runs LLM analysis over page content.
type Extractor struct {
	client llm.Client
	logger *zap.Logger
}

// NewExtractor builds an Extractor over the given LLM client. A nil
// client disables analysis: page verdicts degrade to not-hiring and
// job list filtering passes the raw titles through.
func NewExtractor(client llm.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, logger: logger}
}

// AnalyzeCareerPage asks the model whether the page text shows active
// hiring for the named company. It never returns an error: any failure
// yields a not-hiring analysis whose summary records what went wrong.
func (e *Extractor) AnalyzeCareerPage(ctx context.Context, companyName, content string) *PageAnalysis {
	if e.client == nil {
		return errorAnalysis(errDisabled)
	}
	content = Truncate(content, MaxContentLength)
	prompt := llm.BuildExtractionPrompt(llm.HiringSignalsSchema(companyName), content)

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		e.logger.Warn("career page analysis call failed", zap.Error(err))
		return errorAnalysis(err)
	}

	analysis, err := parsePageAnalysis(raw)
	if err != nil {
		e.logger.Warn("career page analysis returned invalid JSON",
			zap.Error(err), zap.String("raw", Truncate(raw, 200)))
		return errorAnalysis(err)
	}
	return analysis
}

// AnalyzeJobList filters raw scraped title candidates down to genuine
// job titles. On any model failure it falls back to the raw input: the
// candidates came from job listing markup, so keeping them beats
// discarding real signal.
func (e *Extractor) AnalyzeJobList(ctx context.Context, companyName string, titles []string) *PageAnalysis {
	if len(titles) == 0 {
		return &PageAnalysis{HiringSummary: "No positions found"}
	}
	if e.client == nil {
		return fallbackJobList(titles)
	}

	prompt := llm.BuildExtractionPrompt(llm.JobTitlesSchema(companyName), strings.Join(titles, "\n"))
	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		e.logger.Warn("job list filtering call failed", zap.Error(err))
		return fallbackJobList(titles)
	}

	analysis, err := parseJobList(raw)
	if err != nil {
		e.logger.Warn("job list filtering returned invalid JSON", zap.Error(err))
		return fallbackJobList(titles)
	}
	if len(analysis.JobRoles) == 0 {
		// The model rejecting every candidate is suspicious enough to
		// prefer the raw harvest.
		return fallbackJobList(titles)
	}
	return analysis
}

func parsePageAnalysis(raw string) (*PageAnalysis, error) {
	if err := validateJSON(raw, pageAnalysisSchema); err != nil {
		return nil, err
	}

	var analysis PageAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("unmarshaling analysis: %w", err)
	}

	analysis.JobRoles = types.DedupeRoles(analysis.JobRoles)
	analysis.JobCount = len(analysis.JobRoles)
	analysis.IsHiring = analysis.JobCount > 0
	analysis.HiringSummary = types.TruncateSummary(analysis.HiringSummary)
	return &analysis, nil
}

func parseJobList(raw string) (*PageAnalysis, error) {
	if err := validateJSON(raw, jobListSchema); err != nil {
		return nil, err
	}

	var analysis PageAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("unmarshaling job list: %w", err)
	}

	analysis.JobRoles = types.DedupeRoles(analysis.JobRoles)
	analysis.JobCount = len(analysis.JobRoles)
	analysis.IsHiring = analysis.JobCount > 0
	if analysis.HiringSummary == "" {
		analysis.HiringSummary = fmt.Sprintf("Found %d open positions", analysis.JobCount)
	}
	analysis.HiringSummary = types.TruncateSummary(analysis.HiringSummary)
	return &analysis, nil
}

func validateJSON(raw, schema string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("validating response: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("response failed schema validation: %s", strings.Join(problems, "; "))
	}
	return nil
}

// errorAnalysis is the conservative verdict when the model cannot be
// trusted: not hiring, no roles, the failure recorded in the summary.
func errorAnalysis(err error) *PageAnalysis {
	return &PageAnalysis{
		JobRoles:      []string{},
		HiringSummary: types.TruncateSummary("Error: " + err.Error()),
	}
}

// fallbackJobList keeps the raw harvested titles when filtering fails.
func fallbackJobList(titles []string) *PageAnalysis {
	roles := types.DedupeRoles(titles)
	return &PageAnalysis{
		IsHiring:      len(roles) > 0,
		JobRoles:      roles,
		JobCount:      len(roles),
		HiringSummary: fmt.Sprintf("Found %d potential positions", len(roles)),
	}
}

// Truncate clips s to at most n bytes without splitting a multi-byte
// rune at the boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
