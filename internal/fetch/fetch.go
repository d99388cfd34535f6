// Package fetch retrieves career pages and turns them into analyzable
// text. Plain HTTP is tried first; when the extracted text is too short
// the page is assumed to be a JavaScript-rendered SPA and is escalated
// to a headless browser render.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/search"
)

const (
	// HTTPTimeout bounds the plain GET attempt.
	HTTPTimeout = 10 * time.Second

	// MinContentLength is the minimum extracted text length for the plain
	// HTTP fetch to count as successful. Shorter pages escalate to the
	// browser when one is available.
	MinContentLength = 500

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Result holds the raw and processed content from a page fetch.
type Result struct {
	URL        string
	HTML       string
	Text       string
	StatusCode int
	// Rendered is true when the text came from a browser render rather
	// than the plain HTTP response.
	Rendered bool
}

// Error represents a failure to fetch a page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fetcher fetches pages over HTTP with optional browser escalation.
// A nil Renderer degrades gracefully: short pages are returned as-is.
type Fetcher struct {
	client   *http.Client
	renderer Renderer
	logger   *zap.Logger
}

// New builds a Fetcher. renderer may be nil when no browser is
// available.
func New(renderer Renderer, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:   &http.Client{Timeout: HTTPTimeout},
		renderer: renderer,
		logger:   logger,
	}
}

// Page fetches a URL and returns its visible text, escalating to a
// browser render when the plain HTTP text is below MinContentLength.
// waitSelector, when non-empty, is a CSS selector the render waits for
// before snapshotting.
func (f *Fetcher) Page(ctx context.Context, rawURL, waitSelector string) (*Result, error) {
	result, err := f.Get(ctx, rawURL)
	if err != nil {
		// A failed plain GET still escalates; SPA hosts sometimes reject
		// non-browser clients outright.
		if f.renderer == nil {
			return nil, err
		}
		result = &Result{URL: rawURL}
	}

	if !shouldRender(result.Text) {
		return result, nil
	}
	if f.renderer == nil {
		f.logger.Debug("content below render threshold but no browser configured",
			zap.String("url", rawURL), zap.Int("text_len", len(result.Text)))
		if result.Text == "" && result.HTML == "" {
			return nil, &Error{URL: rawURL, Message: "empty page and no browser available"}
		}
		return result, nil
	}

	f.logger.Info("escalating to browser render",
		zap.String("url", rawURL), zap.Int("text_len", len(result.Text)))

	html, renderErr := f.renderer.Render(ctx, rawURL, waitSelector)
	if renderErr != nil {
		if result.Text != "" {
			f.logger.Warn("browser render failed, keeping HTTP text",
				zap.String("url", rawURL), zap.Error(renderErr))
			return result, nil
		}
		return nil, &Error{URL: rawURL, Message: "browser render failed", Cause: renderErr}
	}

	text, extractErr := VisibleText(html)
	if extractErr != nil {
		return nil, &Error{URL: rawURL, Message: "failed to parse rendered HTML", Cause: extractErr}
	}
	return &Result{
		URL:      rawURL,
		HTML:     html,
		Text:     text,
		Rendered: true,
	}, nil
}

// Get fetches a URL over plain HTTP and extracts its visible text. It
// never escalates to a browser.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", search.RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	text, err := VisibleText(string(body))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to parse HTML", Cause: err}
	}
	return &Result{
		URL:        rawURL,
		HTML:       string(body),
		Text:       text,
		StatusCode: resp.StatusCode,
	}, nil
}

// VisibleText strips non-content elements and returns the page's
// visible text with collapsed whitespace.
func VisibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, svg, iframe, nav, footer, header, .cookie-banner, .popup").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return cleanWhitespace(doc.Text()), nil
	}
	return cleanWhitespace(body.Text()), nil
}

func shouldRender(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

// cleanWhitespace trims each line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
