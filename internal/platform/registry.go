package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// BoardTimeout bounds each platform API call.
const BoardTimeout = 10 * time.Second

// boardClient fetches the public job list for one ATS platform.
// Adding a platform means adding an implementation, not editing string
// matching at call sites.
type boardClient interface {
	Platform() Platform
	Jobs(ctx context.Context, token string) ([]types.JobPosting, error)
}

// Registry detects ATS platforms and fetches their job boards.
type Registry struct {
	client *http.Client
	boards []boardClient
	logger *zap.Logger
}

// NewRegistry builds a registry with the fixed platform order
// Greenhouse, Lever, Ashby. Workable is detect-only: it has no public
// list endpoint and no board-page sentinel either.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &http.Client{Timeout: BoardTimeout}
	return &Registry{
		client: client,
		boards: []boardClient{
			&greenhouseBoard{client: client},
			&leverBoard{client: client},
			&ashbyBoard{client: client},
		},
		logger: logger,
	}
}

// TryAll extracts the company token from rawURL and tries every board in
// order, returning the first non-empty job list. A failing platform is
// treated the same as a platform with zero postings; the fallback chain
// above this layer absorbs false negatives. No retries happen here.
func (r *Registry) TryAll(ctx context.Context, rawURL string) []types.JobPosting {
	token := ExtractCompanyToken(rawURL)
	if token == "" {
		r.logger.Warn("could not extract company token", zap.String("url", rawURL))
		return nil
	}

	for _, board := range r.boards {
		jobs, err := board.Jobs(ctx, token)
		if err != nil {
			r.logger.Debug("platform lookup failed",
				zap.String("platform", string(board.Platform())),
				zap.String("token", token),
				zap.Error(err))
			continue
		}
		if len(jobs) > 0 {
			r.logger.Info("platform jobs found",
				zap.String("platform", string(board.Platform())),
				zap.String("token", token),
				zap.Int("count", len(jobs)))
			return jobs
		}
	}
	return nil
}

// FetchBoard fetches one specific platform's board. Used by the
// orchestrator's recovery layer once a discovered career URL turns out to
// be an ATS page.
func (r *Registry) FetchBoard(ctx context.Context, p Platform, token string) ([]types.JobPosting, error) {
	for _, board := range r.boards {
		if board.Platform() == p {
			return board.Jobs(ctx, token)
		}
	}
	return nil, fmt.Errorf("no board client for platform %q", p)
}

// getJSON issues a GET and decodes the 200 body into out. Non-2xx
// statuses are errors; the caller decides whether that matters.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
