package detector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/analyze"
	"github.com/gravity-outreach/hiring-detector/internal/fetch"
	"github.com/gravity-outreach/hiring-detector/internal/platform"
	"github.com/gravity-outreach/hiring-detector/internal/types"
)

type mockPlatforms struct {
	tryAllPostings []types.JobPosting
	boardPostings  []types.JobPosting
	boardErr       error

	tryAllCalls int
	boardCalls  int
	boardToken  string
}

func (m *mockPlatforms) TryAll(context.Context, string) []types.JobPosting {
	m.tryAllCalls++
	return m.tryAllPostings
}

func (m *mockPlatforms) FetchBoard(_ context.Context, _ platform.Platform, token string) ([]types.JobPosting, error) {
	m.boardCalls++
	m.boardToken = token
	return m.boardPostings, m.boardErr
}

type mockLocator struct {
	triangulated *types.CareerPageCandidate
	homepage     *types.CareerPageCandidate
	probed       *types.CareerPageCandidate

	calls int
}

func (m *mockLocator) Triangulate(context.Context, string) (*types.CareerPageCandidate, error) {
	m.calls++
	return m.triangulated, nil
}

func (m *mockLocator) HuntHomepage(context.Context, string) *types.CareerPageCandidate {
	m.calls++
	return m.homepage
}

func (m *mockLocator) ProbePatterns(context.Context, string) *types.CareerPageCandidate {
	m.calls++
	return m.probed
}

type mockFetcher struct {
	pageResult *fetch.Result
	pageErr    error
	getResult  *fetch.Result
	getErr     error

	pageURLs []string
	getURLs  []string
}

func (m *mockFetcher) Page(_ context.Context, rawURL, _ string) (*fetch.Result, error) {
	m.pageURLs = append(m.pageURLs, rawURL)
	return m.pageResult, m.pageErr
}

func (m *mockFetcher) Get(_ context.Context, rawURL string) (*fetch.Result, error) {
	m.getURLs = append(m.getURLs, rawURL)
	return m.getResult, m.getErr
}

type mockExtractor struct {
	pageAnalysis *analyze.PageAnalysis
	listAnalysis *analyze.PageAnalysis

	pageCalls   int
	listCalls   int
	lastCompany string
	lastTitles  []string
}

func (m *mockExtractor) AnalyzeCareerPage(_ context.Context, companyName, _ string) *analyze.PageAnalysis {
	m.pageCalls++
	m.lastCompany = companyName
	return m.pageAnalysis
}

func (m *mockExtractor) AnalyzeJobList(_ context.Context, companyName string, titles []string) *analyze.PageAnalysis {
	m.listCalls++
	m.lastCompany = companyName
	m.lastTitles = titles
	return m.listAnalysis
}

func newChecker(p *mockPlatforms, l *mockLocator, f *mockFetcher, e *mockExtractor) *Checker {
	return NewChecker(p, l, f, e, zap.NewNop())
}

func acme() types.Company {
	return types.Company{Name: "Acme", Website: "https://acme.io"}
}

func TestCheck_PlatformAPIShortCircuits(t *testing.T) {
	boardURL := "https://boards.greenhouse.io/acme"
	platforms := &mockPlatforms{tryAllPostings: []types.JobPosting{
		{Title: "Backend Engineer", Platform: "Greenhouse", URL: boardURL},
		{Title: "Frontend Engineer", Platform: "Greenhouse", URL: boardURL},
		{Title: "Product Designer", Platform: "Greenhouse", URL: boardURL},
	}}
	locator := &mockLocator{}
	fetcher := &mockFetcher{}
	extractor := &mockExtractor{}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, 3, result.JobCount)
	assert.Equal(t, []string{"Backend Engineer", "Frontend Engineer", "Product Designer"}, result.JobRoles)
	assert.Equal(t, "Greenhouse API", result.DetectionMethod)
	// The result points at the board, not the input website.
	assert.Equal(t, boardURL, result.CareerPageURL)
	// Later layers never ran.
	assert.Zero(t, locator.calls)
	assert.Empty(t, fetcher.pageURLs)
	assert.Zero(t, extractor.pageCalls+extractor.listCalls)
}

func TestCheck_ScrapingSentinelSkipsDiscovery(t *testing.T) {
	boardURL := "https://jobs.ashbyhq.com/acme"
	platforms := &mockPlatforms{tryAllPostings: []types.JobPosting{
		{Platform: "Ashby", URL: boardURL, RequiresScraping: true},
	}}
	locator := &mockLocator{}
	fetcher := &mockFetcher{pageResult: &fetch.Result{
		URL:  boardURL,
		HTML: "<html><body><p>Engineering roles</p></body></html>",
		Text: "Engineering roles",
	}}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		IsHiring:      true,
		JobRoles:      []string{"Staff Engineer"},
		JobCount:      1,
		HiringSummary: "Hiring a staff engineer.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, boardURL, result.CareerPageURL)
	assert.Equal(t, "Playwright + Gemini", result.DetectionMethod)
	// The board URL was rendered directly; discovery never ran.
	assert.Zero(t, locator.calls)
	require.Len(t, fetcher.pageURLs, 1)
	assert.Equal(t, boardURL, fetcher.pageURLs[0])
}

func TestCheck_NoCareerPageFound(t *testing.T) {
	platforms := &mockPlatforms{}
	locator := &mockLocator{}
	fetcher := &mockFetcher{}
	extractor := &mockExtractor{}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.False(t, result.IsHiring)
	assert.Zero(t, result.JobCount)
	assert.Equal(t, "none", result.DetectionMethod)
	// All three discovery rungs ran.
	assert.Equal(t, 3, locator.calls)
}

func TestCheck_NegativePageSkipsLLM(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodSitemapDiscovery,
	}}
	fetcher := &mockFetcher{pageResult: &fetch.Result{
		URL:  pageURL,
		HTML: "<html><body><p>There are NO open positions right now.</p></body></html>",
		Text: "There are NO open positions right now.",
	}}
	extractor := &mockExtractor{}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.False(t, result.IsHiring)
	assert.Zero(t, result.JobCount)
	assert.Equal(t, pageURL, result.CareerPageURL)
	assert.Equal(t, "No open positions", result.HiringSummary)
	assert.Equal(t, "Playwright", result.DetectionMethod)
	assert.Zero(t, extractor.pageCalls+extractor.listCalls)
}

func TestCheck_RenderedPageFeedsLLM(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodGoogleOrganic,
	}}
	fetcher := &mockFetcher{pageResult: &fetch.Result{
		URL:  pageURL,
		HTML: "<html><body><p>Join our growing team</p></body></html>",
		Text: "Join our growing team",
	}}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		IsHiring:      true,
		JobRoles:      []string{"Data Engineer", "Recruiter"},
		JobCount:      2,
		HiringSummary: "Hiring for data and recruiting.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, 2, result.JobCount)
	assert.Equal(t, "Playwright + Gemini", result.DetectionMethod)
	assert.Equal(t, 1, extractor.pageCalls)
	assert.Zero(t, extractor.listCalls)
	// The model gets the company name for context.
	assert.Equal(t, "Acme", extractor.lastCompany)
}

func TestCheck_ListingMarkupUsesJobListAnalysis(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodSitemapDiscovery,
	}}
	fetcher := &mockFetcher{pageResult: &fetch.Result{
		URL: pageURL,
		HTML: `<html><body>
			<div class="job-title">Machine Learning Engineer</div>
			<div class="job-title">Solutions Architect</div>
		</body></html>`,
		Text: "Machine Learning Engineer Solutions Architect",
	}}
	extractor := &mockExtractor{listAnalysis: &analyze.PageAnalysis{
		IsHiring:      true,
		JobRoles:      []string{"Machine Learning Engineer", "Solutions Architect"},
		JobCount:      2,
		HiringSummary: "Hiring ML and solutions roles.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, 1, extractor.listCalls)
	assert.Zero(t, extractor.pageCalls)
	assert.Equal(t, "Acme", extractor.lastCompany)
	assert.Equal(t, []string{"Machine Learning Engineer", "Solutions Architect"}, extractor.lastTitles)
}

func TestCheck_NegativeLLMVerdictTriggersBoardRecovery(t *testing.T) {
	// A Greenhouse SPA shell renders as near-empty text, so the model
	// sees nothing. The board API still lists the real openings.
	boardURL := "https://boards.greenhouse.io/acme"
	platforms := &mockPlatforms{boardPostings: []types.JobPosting{
		{Title: "Compiler Engineer", Platform: "Greenhouse"},
		{Title: "Solutions Engineer", Platform: "Greenhouse"},
	}}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: boardURL, Method: types.MethodATSBackdoor,
	}}
	fetcher := &mockFetcher{pageResult: &fetch.Result{
		URL:  boardURL,
		HTML: "<html><body><div id=\"root\"></div></body></html>",
		Text: "",
	}}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		JobRoles:      []string{},
		HiringSummary: "No openings visible.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, 2, result.JobCount)
	assert.Equal(t, "greenhouse API (Layer 4 recovery)", result.DetectionMethod)
}

func TestCheck_NegativeLLMVerdictRetriesBasicHTTP(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodSitemapDiscovery,
	}}
	fetcher := &mockFetcher{
		pageResult: &fetch.Result{URL: pageURL, HTML: "<html><body>shell</body></html>", Text: "shell"},
		getResult:  &fetch.Result{URL: pageURL, Text: "shell"},
	}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		JobRoles:      []string{},
		HiringSummary: "Nothing listed.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.False(t, result.IsHiring)
	assert.Equal(t, "Gemini (basic HTTP)", result.DetectionMethod)
	// Rendered pass plus the terminal basic pass.
	assert.Equal(t, 2, extractor.pageCalls)
}

func TestCheck_RecoveryViaPlatformAPI(t *testing.T) {
	boardURL := "https://boards.greenhouse.io/acme"
	platforms := &mockPlatforms{boardPostings: []types.JobPosting{
		{Title: "Site Reliability Engineer", Platform: "Greenhouse"},
	}}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: boardURL, Method: types.MethodATSBackdoor,
	}}
	fetcher := &mockFetcher{pageErr: errors.New("render timed out")}
	extractor := &mockExtractor{}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, []string{"Site Reliability Engineer"}, result.JobRoles)
	assert.Equal(t, "greenhouse API (Layer 4 recovery)", result.DetectionMethod)
	assert.Equal(t, "acme", platforms.boardToken)
	assert.Zero(t, extractor.pageCalls+extractor.listCalls)
}

func TestCheck_RecoveryViaBasicHTTP(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{probed: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodPatternProbe,
	}}
	fetcher := &mockFetcher{
		pageErr:   errors.New("render timed out"),
		getResult: &fetch.Result{URL: pageURL, Text: "Open roles: Accountant"},
	}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		IsHiring:      true,
		JobRoles:      []string{"Accountant"},
		JobCount:      1,
		HiringSummary: "Hiring an accountant.",
	}}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.True(t, result.IsHiring)
	assert.Equal(t, "Gemini (basic HTTP)", result.DetectionMethod)
	require.Len(t, fetcher.getURLs, 1)
}

func TestCheck_EverythingFails(t *testing.T) {
	pageURL := "https://acme.io/careers"
	platforms := &mockPlatforms{}
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodSitemapDiscovery,
	}}
	fetcher := &mockFetcher{
		pageErr: errors.New("render timed out"),
		getErr:  errors.New("connection refused"),
	}
	extractor := &mockExtractor{}

	result := newChecker(platforms, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.False(t, result.IsHiring)
	assert.Equal(t, "failed", result.DetectionMethod)
	assert.Contains(t, result.HiringSummary, "connection refused")
}

func TestCheck_NoWebsite(t *testing.T) {
	checker := newChecker(&mockPlatforms{}, &mockLocator{}, &mockFetcher{}, &mockExtractor{})
	result := checker.Check(context.Background(), types.Company{Name: "Mystery Co"})

	assert.False(t, result.IsHiring)
	assert.Equal(t, "none", result.DetectionMethod)
}

func TestCheck_InvariantHolds(t *testing.T) {
	pageURL := "https://acme.io/careers"
	locator := &mockLocator{triangulated: &types.CareerPageCandidate{
		URL: pageURL, Method: types.MethodSitemapDiscovery,
	}}
	fetcher := &mockFetcher{pageResult: &fetch.Result{URL: pageURL, Text: "some page", HTML: "<html><body>some page</body></html>"}}
	extractor := &mockExtractor{pageAnalysis: &analyze.PageAnalysis{
		IsHiring:      true,
		JobRoles:      []string{"Engineer", "engineer", "", "Engineer"},
		JobCount:      99,
		HiringSummary: "dup heavy",
	}}

	result := newChecker(&mockPlatforms{}, locator, fetcher, extractor).Check(context.Background(), acme())

	assert.Equal(t, result.JobCount, len(result.JobRoles))
	assert.Equal(t, []string{"Engineer"}, result.JobRoles)
	assert.Equal(t, result.IsHiring, result.JobCount > 0)
}
