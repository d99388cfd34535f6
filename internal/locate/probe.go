package locate

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/search"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// careerPathSuffixes are the common career page paths, in probe order.
var careerPathSuffixes = []string{
	"/careers",
	"/jobs",
	"/company/careers",
	"/about/careers",
	"/join-us",
	"/work-with-us",
	"/team",
}

// ProbePatterns guesses career page URLs from a fixed list of common
// paths against the given domain and its root domain, plus careers./jobs.
// subdomain guesses, issuing a HEAD request per candidate and accepting
// the first 200. List order is the only tie-break; there is no scoring.
func (l *Locator) ProbePatterns(ctx context.Context, domain string) *types.CareerPageCandidate {
	domain = CleanDomain(domain)
	root := RootDomain(domain)

	var candidates []string
	for _, suffix := range careerPathSuffixes {
		candidates = append(candidates, l.scheme+"://"+domain+suffix)
	}
	if root != domain {
		for _, suffix := range careerPathSuffixes {
			candidates = append(candidates, l.scheme+"://"+root+suffix)
		}
	}
	candidates = append(candidates,
		l.scheme+"://careers."+root,
		l.scheme+"://jobs."+root,
	)

	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		if l.headOK(ctx, candidate) {
			l.logger.Info("pattern probe hit", zap.String("url", candidate))
			return &types.CareerPageCandidate{URL: candidate, Method: types.MethodPatternProbe}
		}
	}
	return nil
}

// headOK reports whether a HEAD request (following redirects) returns 200.
func (l *Locator) headOK(ctx context.Context, rawURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", search.RandomUserAgent())

	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	// Some sites redirect missing paths back to the homepage. When the
	// candidate had a path, a final URL that collapsed to the bare origin
	// is a soft 404.
	if hasPath(rawURL) && !hasPath(resp.Request.URL.String()) {
		return false
	}
	return true
}

// hasPath reports whether a URL carries more than a bare origin.
func hasPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path != "" && u.Path != "/"
}
