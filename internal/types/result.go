// Package types defines the shared data model for the hiring detection pipeline.
package types

import (
	"strings"
	"unicode/utf8"
)

// MaxJobRoles is the maximum number of job titles carried in a result.
const MaxJobRoles = 20

// MaxSummaryLength is the maximum length of a hiring summary.
const MaxSummaryLength = 200

// HiringResult is the sole output of a hiring check. It is created once
// per check and must not be mutated after it is returned.
type HiringResult struct {
	IsHiring        bool     `json:"is_hiring"`
	CareerPageURL   string   `json:"career_page_url,omitempty"`
	JobRoles        []string `json:"job_roles"`
	JobCount        int      `json:"job_count"`
	HiringSummary   string   `json:"hiring_summary"`
	DetectionMethod string   `json:"detection_method"`
}

// NewHiringResult builds a result from a raw role list, enforcing the
// invariants JobCount == len(JobRoles), len(JobRoles) <= MaxJobRoles
// (de-duplicated, order preserved) and len(HiringSummary) <= MaxSummaryLength.
// IsHiring is derived from the role count.
func NewHiringResult(careerURL string, roles []string, summary, method string) *HiringResult {
	cleaned := DedupeRoles(roles)
	return &HiringResult{
		IsHiring:        len(cleaned) > 0,
		CareerPageURL:   careerURL,
		JobRoles:        cleaned,
		JobCount:        len(cleaned),
		HiringSummary:   TruncateSummary(summary),
		DetectionMethod: method,
	}
}

// NotHiringResult builds a deterministic negative result. It is used for
// the zero-evidence short-circuits, which force IsHiring=false regardless
// of any other signal.
func NotHiringResult(careerURL, summary, method string) *HiringResult {
	return &HiringResult{
		IsHiring:        false,
		CareerPageURL:   careerURL,
		JobRoles:        []string{},
		JobCount:        0,
		HiringSummary:   TruncateSummary(summary),
		DetectionMethod: method,
	}
}

// DedupeRoles removes empty and duplicate titles while preserving order,
// capping the list at MaxJobRoles.
func DedupeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[strings.ToLower(r)] {
			continue
		}
		seen[strings.ToLower(r)] = true
		out = append(out, r)
		if len(out) == MaxJobRoles {
			break
		}
	}
	return out
}

// TruncateSummary caps a summary at MaxSummaryLength bytes, backing
// off to a rune boundary so the cut never produces invalid UTF-8.
func TruncateSummary(s string) string {
	if len(s) <= MaxSummaryLength {
		return s
	}
	cut := MaxSummaryLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// JobPosting is the platform-layer intermediate record. It is produced by
// the platform registry and discarded after conversion to job roles.
type JobPosting struct {
	Title      string `json:"title"`
	Location   string `json:"location,omitempty"`
	Department string `json:"department,omitempty"`
	URL        string `json:"url,omitempty"`
	Platform   string `json:"platform"`

	// RequiresScraping marks board pages (Ashby) that expose no public
	// JSON API. The carried URL must be rendered instead of fetched.
	RequiresScraping bool `json:"requires_scraping,omitempty"`
}

// Titles extracts the non-empty titles from a posting list.
func Titles(postings []JobPosting) []string {
	titles := make([]string, 0, len(postings))
	for _, p := range postings {
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
	}
	return titles
}

// DiscoveryMethod identifies how a career page candidate was found.
type DiscoveryMethod string

// Discovery methods, in strict priority order.
const (
	MethodATSBackdoor      DiscoveryMethod = "ATS_Backdoor"
	MethodSitemapDiscovery DiscoveryMethod = "Sitemap_Discovery"
	MethodGoogleOrganic    DiscoveryMethod = "Google_Organic"
	MethodHomepageLink     DiscoveryMethod = "Homepage_Link"
	MethodPatternProbe     DiscoveryMethod = "Pattern_Probe"
	MethodNone             DiscoveryMethod = "none"
)

// CareerPageCandidate is the single surviving candidate of career page
// discovery. Ties between discovery strategies are broken by strict
// priority order, never by content quality.
type CareerPageCandidate struct {
	URL    string          `json:"url"`
	Method DiscoveryMethod `json:"method"`
}
