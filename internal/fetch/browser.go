package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// RenderTimeout bounds a full browser render, navigation included.
	RenderTimeout = 30 * time.Second
	// selectorWait is how long a render waits for an optional selector
	// before giving up and snapshotting anyway.
	selectorWait = 5 * time.Second
	// settleWait gives client-side frameworks a beat to paint after the
	// document is ready.
	settleWait = 2 * time.Second
)

// Renderer renders a page in a real browser and returns the final DOM.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

// ChromeRenderer drives headless Chrome via the DevTools protocol.
// Concurrent renders are bounded; each render gets a fresh browser
// context so state never leaks between companies.
type ChromeRenderer struct {
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// NewChromeRenderer builds a renderer allowing at most maxConcurrent
// simultaneous browser sessions.
func NewChromeRenderer(maxConcurrent int64, logger *zap.Logger) *ChromeRenderer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger,
	}
}

// Render navigates to url in headless Chrome and returns the rendered
// HTML. Requires Chrome or Chromium on the host.
func (r *ChromeRenderer) Render(ctx context.Context, url, waitSelector string) (string, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for browser slot: %w", err)
	}
	defer r.sem.Release(1)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, RenderTimeout)
	defer cancelTimeout()

	r.logger.Debug("rendering page", zap.String("url", url), zap.String("wait_selector", waitSelector))

	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if waitSelector != "" {
		// Platform board pages signal readiness with a known selector;
		// a miss is tolerated since the page may already be complete.
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, selectorWait)
			defer cancel()
			if err := chromedp.WaitVisible(waitSelector, chromedp.ByQuery).Do(waitCtx); err != nil {
				r.logger.Debug("wait selector never appeared",
					zap.String("url", url), zap.String("selector", waitSelector))
			}
			return nil
		}))
	}
	actions = append(actions,
		chromedp.Sleep(settleWait),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	r.logger.Debug("render complete", zap.String("url", url), zap.Int("html_bytes", len(html)))
	return html, nil
}
