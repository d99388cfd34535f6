// Package platform recognizes known applicant-tracking-system URL shapes
// and fetches their public job-listing APIs.
package platform

import (
	"net/url"
	"strings"
)

// Platform represents a known ATS platform.
type Platform string

// Known platforms. Hostname patterns are mutually exclusive, so detection
// order does not matter.
const (
	Greenhouse Platform = "greenhouse"
	Lever      Platform = "lever"
	Ashby      Platform = "ashby"
	Workable   Platform = "workable"
	None       Platform = ""
)

// Label returns the display name used in detection-method strings.
func (p Platform) Label() string {
	switch p {
	case Greenhouse:
		return "Greenhouse"
	case Lever:
		return "Lever"
	case Ashby:
		return "Ashby"
	case Workable:
		return "Workable"
	default:
		return "Unknown"
	}
}

// Detect identifies the ATS platform from a URL. Matching is a
// case-insensitive substring check against known ATS hostnames.
func Detect(rawURL string) Platform {
	u := strings.ToLower(rawURL)

	switch {
	case strings.Contains(u, "greenhouse.io"):
		return Greenhouse
	case strings.Contains(u, "lever.co"):
		return Lever
	case strings.Contains(u, "ashbyhq.com"):
		return Ashby
	case strings.Contains(u, "workable.com"):
		return Workable
	}
	return None
}

// Path segments that are never a company slug.
var genericSegments = map[string]bool{
	"boards":   true,
	"postings": true,
	"api":      true,
	"v0":       true,
	"v1":       true,
}

// Hostname labels that are never a company slug: common TLDs and the
// platform names themselves.
var genericLabels = map[string]bool{
	"com": true, "co": true, "io": true, "net": true, "org": true,
	"ai": true, "vc": true,
	"greenhouse": true, "lever": true, "ashbyhq": true, "workable": true,
}

// ExtractCompanyToken derives the ATS-specific company slug from a URL.
//
// Path-based boards (jobs.lever.co/netflix) yield the first non-generic
// path segment. Subdomain-based boards (netflix.lever.co) yield the first
// hostname label that is not a known TLD or platform name, after stripping
// www/jobs/careers prefixes. Returns "" when nothing plausible is found.
func ExtractCompanyToken(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if path := strings.Trim(parsed.Path, "/"); path != "" {
		for _, segment := range strings.Split(path, "/") {
			if segment != "" && !genericSegments[segment] {
				return segment
			}
		}
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "jobs.")
	host = strings.TrimPrefix(host, "careers.")

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if label != "" && !genericLabels[label] {
			return label
		}
	}
	if len(labels) > 0 {
		return labels[0]
	}
	return ""
}
