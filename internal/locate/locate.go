// Package locate discovers the most likely career page URL for a company
// domain. Triangulation runs three strategies in strict priority order
// and stops at the first success; lower-confidence fallbacks (homepage
// link hunt, pattern probing) are separate operations invoked by the
// orchestrator when triangulation comes up empty.
package locate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/search"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

const (
	// SitemapTimeout bounds the sitemap.xml fetch.
	SitemapTimeout = 10 * time.Second
	// ProbeTimeout bounds each HEAD probe.
	ProbeTimeout = 5 * time.Second
	// searchResultCount is how many organic results each query requests.
	searchResultCount = 5
	// maxBodyBytes caps how much of a sitemap or homepage is read.
	maxBodyBytes = 4 << 20
)

// atsHosts are the known ATS hostnames accepted by the backdoor search.
var atsHosts = []string{
	"greenhouse.io",
	"lever.co",
	"ashbyhq.com",
	"workable.com",
	"breezy.hr",
}

// careerKeywords mark a sitemap URL as a likely job listing page.
var careerKeywords = []string{"career", "jobs", "join"}

// linkKeywords mark a homepage anchor as a likely career link.
var linkKeywords = []string{
	"career", "careers", "job", "jobs", "hiring",
	"join us", "work with us", "openings", "positions",
}

// locRe scans <loc> entries without full XML validation, tolerating the
// malformed sitemaps real sites serve.
var locRe = regexp.MustCompile(`<loc>(.*?)</loc>`)

// Locator finds career pages for bare domains.
type Locator struct {
	searcher search.Searcher
	client   *http.Client
	logger   *zap.Logger

	// scheme is https outside of tests.
	scheme string
}

// New builds a Locator. The HTTP client is shared by sitemap fetches,
// homepage scans and HEAD probes; per-request timeouts are set per call.
func New(searcher search.Searcher, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		searcher: searcher,
		client: &http.Client{
			Timeout: SitemapTimeout,
		},
		logger: logger,
		scheme: "https",
	}
}

// Triangulate runs the 3-priority discovery hierarchy for a bare domain:
// ATS backdoor search, sitemap scan, organic search. The first hit wins;
// ties are broken by priority order, never by content quality. A nil
// candidate with nil error means all three strategies found nothing.
func (l *Locator) Triangulate(ctx context.Context, domain string) (*types.CareerPageCandidate, error) {
	domain = CleanDomain(domain)
	l.logger.Info("triangulating career page", zap.String("domain", domain))

	if candidate := l.findATSBoard(ctx, domain); candidate != nil {
		l.logger.Info("ATS backdoor hit", zap.String("url", candidate.URL))
		return candidate, nil
	}

	if candidate := l.checkSitemap(ctx, domain); candidate != nil {
		l.logger.Info("sitemap hit", zap.String("url", candidate.URL))
		return candidate, nil
	}

	if candidate := l.findOrganic(ctx, domain); candidate != nil {
		l.logger.Info("organic search hit", zap.String("url", candidate.URL))
		return candidate, nil
	}

	l.logger.Warn("triangulation found nothing", zap.String("domain", domain))
	return nil, nil
}

// findATSBoard searches the known ATS platforms for the company and
// accepts the first organic result hosted on one of them.
func (l *Locator) findATSBoard(ctx context.Context, domain string) *types.CareerPageCandidate {
	token := strings.Split(domain, ".")[0]
	query := fmt.Sprintf(`site:greenhouse.io OR site:lever.co OR site:ashbyhq.com "%s"`, token)

	results, err := l.searcher.Search(ctx, query, searchResultCount)
	if err != nil {
		l.logger.Debug("ATS backdoor search failed", zap.Error(err))
		return nil
	}
	for _, r := range results {
		for _, host := range atsHosts {
			if strings.Contains(r.Link, host) {
				return &types.CareerPageCandidate{URL: r.Link, Method: types.MethodATSBackdoor}
			}
		}
	}
	return nil
}

// checkSitemap fetches https://{domain}/sitemap.xml and returns the first
// <loc> URL containing a career keyword.
func (l *Locator) checkSitemap(ctx context.Context, domain string) *types.CareerPageCandidate {
	sitemapURL := fmt.Sprintf("%s://%s/sitemap.xml", l.scheme, domain)

	body, err := l.get(ctx, sitemapURL)
	if err != nil {
		l.logger.Debug("sitemap fetch failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}

	for _, match := range locRe.FindAllStringSubmatch(body, -1) {
		loc := strings.TrimSpace(match[1])
		lower := strings.ToLower(loc)
		for _, kw := range careerKeywords {
			if strings.Contains(lower, kw) {
				return &types.CareerPageCandidate{URL: loc, Method: types.MethodSitemapDiscovery}
			}
		}
	}
	return nil
}

// findOrganic falls back to a plain site-restricted search and accepts
// the first result unconditionally.
func (l *Locator) findOrganic(ctx context.Context, domain string) *types.CareerPageCandidate {
	query := fmt.Sprintf("site:%s (careers OR jobs)", domain)

	results, err := l.searcher.Search(ctx, query, searchResultCount)
	if err != nil {
		l.logger.Debug("organic search failed", zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	return &types.CareerPageCandidate{URL: results[0].Link, Method: types.MethodGoogleOrganic}
}

// HuntHomepage scans the homepage's anchors for a career link, checking
// anchor text first, then the href itself. Relative links are resolved
// against the homepage URL.
func (l *Locator) HuntHomepage(ctx context.Context, website string) *types.CareerPageCandidate {
	base := EnsureScheme(website)

	body, err := l.get(ctx, base)
	if err != nil {
		l.logger.Debug("homepage fetch failed", zap.String("url", base), zap.Error(err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		for _, kw := range linkKeywords {
			if strings.Contains(text, kw) || strings.Contains(strings.ToLower(href), kw) {
				found = resolveURL(base, href)
				return false
			}
		}
		return true
	})

	if found == "" {
		return nil
	}
	return &types.CareerPageCandidate{URL: found, Method: types.MethodHomepageLink}
}

// get issues a GET with a randomized desktop user agent.
func (l *Locator) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", search.RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// CleanDomain strips scheme, www prefix and any path from a domain-ish
// string.
func CleanDomain(domain string) string {
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	return strings.TrimSpace(strings.Split(domain, "/")[0])
}

// RootDomain strips a jobs./careers./www. subdomain prefix, yielding the
// registrable site (jobs.primary.vc -> primary.vc).
func RootDomain(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) > 2 {
		switch parts[0] {
		case "jobs", "careers", "www":
			return strings.Join(parts[1:], ".")
		}
	}
	return domain
}

// EnsureScheme prefixes https:// when the value has no scheme.
func EnsureScheme(website string) string {
	if strings.HasPrefix(website, "http://") || strings.HasPrefix(website, "https://") {
		return strings.TrimRight(website, "/")
	}
	return "https://" + strings.TrimRight(website, "/")
}

func resolveURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
