// Package search wraps the Google Custom Search API used for career page
// discovery. A client without credentials degrades to empty results
// rather than failing the pipeline.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Result is one organic search hit.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Searcher is the web-search collaborator contract.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]Result, error)
}

// Client implements Searcher over Google Custom Search.
type Client struct {
	svc    *customsearch.Service
	cx     string
	logger *zap.Logger
}

// NewClient builds a search client. An empty apiKey or cx yields a
// client whose Search always returns no results; the missing key is
// logged once here, not per call.
func NewClient(ctx context.Context, apiKey, cx string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" || cx == "" {
		logger.Warn("search API credentials not configured; discovery searches disabled")
		return &Client{cx: cx, logger: logger}, nil
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Client{svc: svc, cx: cx, logger: logger}, nil
}

// Search returns up to numResults organic results for the query.
// A client without credentials returns an empty slice and nil error.
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if c.svc == nil {
		return nil, nil
	}
	if numResults <= 0 {
		numResults = 5
	}

	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(int64(numResults)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", query, err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	c.logger.Debug("search completed", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}
