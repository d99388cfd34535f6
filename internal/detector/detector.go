// Package detector orchestrates the layered hiring check. Cheap,
// high-precision signals run first; each layer falls through to the
// next only when it produces no verdict. The final layer is terminal
// and always yields a result.
package detector

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/analyze"
	"github.com/gravity-outreach/hiring-detector/internal/fetch"
	"github.com/gravity-outreach/hiring-detector/internal/locate"
	"github.com/gravity-outreach/hiring-detector/internal/platform"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// Detection method labels carried on results. Downstream consumers key
// on these exact strings, so they are frozen even where the underlying
// implementation has moved on.
const (
	methodNoCareerPage = "none"
	// methodRendered is the legacy label for the rendered-page negative
	// verdict, kept for downstream compatibility.
	methodRendered        = "Playwright"
	methodRenderedLLM     = "Playwright + Gemini"
	methodBasicLLM        = "Gemini (basic HTTP)"
	methodFailed          = "failed"
	recoveryMethodPattern = "%s API (Layer 4 recovery)"
)

// negativeMarkers short-circuit LLM analysis when the rendered page
// states outright that nothing is open. Substring match covers plural
// forms.
var negativeMarkers = []string{
	"no open position",
	"no current opening",
}

// platformWaitSelectors are per-platform CSS selectors a render waits
// for before snapshotting a hosted board page.
var platformWaitSelectors = map[platform.Platform]string{
	platform.Greenhouse: ".opening",
	platform.Lever:      ".posting",
	platform.Ashby:      "[class*='job-posting']",
}

// PlatformSource is the ATS lookup layer.
type PlatformSource interface {
	TryAll(ctx context.Context, rawURL string) []types.JobPosting
	FetchBoard(ctx context.Context, p platform.Platform, token string) ([]types.JobPosting, error)
}

// CareerLocator finds career page candidates for a domain.
type CareerLocator interface {
	Triangulate(ctx context.Context, domain string) (*types.CareerPageCandidate, error)
	HuntHomepage(ctx context.Context, website string) *types.CareerPageCandidate
	ProbePatterns(ctx context.Context, domain string) *types.CareerPageCandidate
}

// PageFetcher retrieves page text, with and without browser rendering.
type PageFetcher interface {
	Page(ctx context.Context, rawURL, waitSelector string) (*fetch.Result, error)
	Get(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// ContentExtractor runs LLM analysis over page content. The company
// name gives the model disambiguating context for shared career
// portals.
type ContentExtractor interface {
	AnalyzeCareerPage(ctx context.Context, companyName, content string) *analyze.PageAnalysis
	AnalyzeJobList(ctx context.Context, companyName string, titles []string) *analyze.PageAnalysis
}

// Checker runs the full layered hiring check for one company.
type Checker struct {
	platforms PlatformSource
	locator   CareerLocator
	fetcher   PageFetcher
	extractor ContentExtractor
	logger    *zap.Logger
}

// NewChecker wires the four layers together.
func NewChecker(platforms PlatformSource, locator CareerLocator, fetcher PageFetcher, extractor ContentExtractor, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		platforms: platforms,
		locator:   locator,
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger,
	}
}

// Check determines whether a company is actively hiring. It never
// returns an error: every failure mode maps to a result whose
// DetectionMethod records how far the check got.
func (c *Checker) Check(ctx context.Context, company types.Company) *types.HiringResult {
	log := c.logger.With(zap.String("company", company.Name))
	log.Info("starting hiring check", zap.String("website", company.Website))

	if strings.TrimSpace(company.Website) == "" {
		return types.NotHiringResult("", "No career page found", methodNoCareerPage)
	}

	// Layer 1: direct ATS platform lookup.
	var scrapeOnly *types.JobPosting
	if postings := c.platforms.TryAll(ctx, company.Website); len(postings) > 0 {
		if postings[0].RequiresScraping {
			// Board exists but has no public JSON API. Render its page
			// directly instead of running generic discovery.
			scrapeOnly = &postings[0]
			log.Info("platform board requires scraping", zap.String("url", scrapeOnly.URL))
		} else {
			label := postings[0].Platform
			log.Info("platform API hit", zap.String("platform", label), zap.Int("count", len(postings)))
			pageURL := company.Website
			if postings[0].URL != "" {
				pageURL = postings[0].URL
			}
			return types.NewHiringResult(
				pageURL,
				types.Titles(postings),
				fmt.Sprintf("Found %d open positions via %s", len(postings), label),
				label+" API",
			)
		}
	}

	// Layer 2: career page discovery, skipped when layer 1 already
	// pinned the page to scrape.
	var candidate *types.CareerPageCandidate
	if scrapeOnly != nil {
		candidate = &types.CareerPageCandidate{
			URL:    scrapeOnly.URL,
			Method: types.MethodATSBackdoor,
		}
	} else {
		candidate = c.discover(ctx, company)
		if candidate == nil {
			log.Info("no career page found")
			return types.NotHiringResult("", "No career page found", methodNoCareerPage)
		}
		log.Info("career page located",
			zap.String("url", candidate.URL),
			zap.String("discovery_method", string(candidate.Method)))
	}

	// Layer 3: rendered fetch and LLM analysis. Terminal on a positive
	// verdict or the explicit no-openings short-circuit; a negative LLM
	// verdict falls through, since it may just mean the page was an
	// unreadable SPA shell.
	result, fetchErr := c.analyzeRendered(ctx, company.Name, candidate.URL)
	if fetchErr == nil && (result.IsHiring || result.DetectionMethod == methodRendered) {
		return result
	}
	if fetchErr != nil {
		log.Warn("rendered analysis failed, entering recovery", zap.Error(fetchErr))
		result = nil
	}

	// Layer 4: terminal recovery.
	return c.recover(ctx, company.Name, candidate.URL, result, log)
}

// discover runs the discovery ladder: triangulation, then the homepage
// link hunt, then pattern probing. Nil means every rung came up empty.
func (c *Checker) discover(ctx context.Context, company types.Company) *types.CareerPageCandidate {
	domain := locate.CleanDomain(company.Website)

	candidate, err := c.locator.Triangulate(ctx, domain)
	if err != nil {
		c.logger.Warn("triangulation error", zap.String("domain", domain), zap.Error(err))
	}
	if candidate != nil {
		return candidate
	}
	if candidate = c.locator.HuntHomepage(ctx, company.Website); candidate != nil {
		return candidate
	}
	return c.locator.ProbePatterns(ctx, domain)
}

// analyzeRendered fetches the career page (escalating to a browser when
// needed) and produces a verdict. A non-nil error means the page could
// not be fetched at all and recovery should run; analysis itself never
// fails.
func (c *Checker) analyzeRendered(ctx context.Context, companyName, pageURL string) (*types.HiringResult, error) {
	waitSelector := platformWaitSelectors[platform.Detect(pageURL)]

	page, err := c.fetcher.Page(ctx, pageURL, waitSelector)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(page.Text)
	for _, marker := range negativeMarkers {
		if strings.Contains(lower, marker) {
			// The page says it outright; asking the model would only
			// add a chance to hallucinate openings.
			return types.NotHiringResult(pageURL, "No open positions", methodRendered), nil
		}
	}

	var verdict *analyze.PageAnalysis
	if titles := fetch.ExtractJobListings(page.HTML); len(titles) > 0 {
		verdict = c.extractor.AnalyzeJobList(ctx, companyName, titles)
	} else {
		verdict = c.extractor.AnalyzeCareerPage(ctx, companyName, page.Text)
	}
	return types.NewHiringResult(pageURL, verdict.JobRoles, verdict.HiringSummary, methodRenderedLLM), nil
}

// recover is the terminal layer. When the discovered URL is a hosted
// board with a public API, the board is fetched directly, which rescues
// SPA shells whose rendered text reads as empty. Otherwise a plain GET
// feeds the model one last time. Every path produces a result; rendered
// is the layer-3 verdict kept as a last resort when even the plain GET
// fails.
func (c *Checker) recover(ctx context.Context, companyName, pageURL string, rendered *types.HiringResult, log *zap.Logger) *types.HiringResult {
	p := platform.Detect(pageURL)
	if p == platform.Greenhouse || p == platform.Lever {
		if token := platform.ExtractCompanyToken(pageURL); token != "" {
			postings, err := c.platforms.FetchBoard(ctx, p, token)
			if err == nil && len(postings) > 0 {
				log.Info("recovered via platform API", zap.String("platform", string(p)))
				return types.NewHiringResult(
					pageURL,
					types.Titles(postings),
					fmt.Sprintf("Found %d open positions via %s", len(postings), p.Label()),
					fmt.Sprintf(recoveryMethodPattern, string(p)),
				)
			}
			if err != nil {
				log.Debug("platform recovery failed", zap.Error(err))
			}
		}
	}

	page, err := c.fetcher.Get(ctx, pageURL)
	if err != nil {
		log.Warn("basic HTTP recovery failed", zap.Error(err))
		if rendered != nil {
			return rendered
		}
		return types.NotHiringResult(pageURL,
			types.TruncateSummary("Error: "+err.Error()), methodFailed)
	}

	verdict := c.extractor.AnalyzeCareerPage(ctx, companyName, page.Text)
	return types.NewHiringResult(pageURL, verdict.JobRoles, verdict.HiringSummary, methodBasicLLM)
}
