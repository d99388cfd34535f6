package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// Default public API endpoints. Overridable for tests.
const (
	greenhouseBaseURL = "https://boards-api.greenhouse.io"
	leverBaseURL      = "https://api.lever.co"
	ashbyBaseURL      = "https://jobs.ashbyhq.com"
)

// greenhouseBoard fetches GET /v1/boards/{token}/jobs.
type greenhouseBoard struct {
	client  *http.Client
	baseURL string
}

func (b *greenhouseBoard) Platform() Platform { return Greenhouse }

func (b *greenhouseBoard) Jobs(ctx context.Context, token string) ([]types.JobPosting, error) {
	base := b.baseURL
	if base == "" {
		base = greenhouseBaseURL
	}

	var payload struct {
		Jobs []struct {
			Title    string `json:"title"`
			Location struct {
				Name string `json:"name"`
			} `json:"location"`
			Departments []struct {
				Name string `json:"name"`
			} `json:"departments"`
			AbsoluteURL string `json:"absolute_url"`
		} `json:"jobs"`
	}
	url := fmt.Sprintf("%s/v1/boards/%s/jobs", base, token)
	if err := getJSON(ctx, b.client, url, &payload); err != nil {
		return nil, err
	}

	postings := make([]types.JobPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		posting := types.JobPosting{
			Title:    job.Title,
			Location: job.Location.Name,
			URL:      job.AbsoluteURL,
			Platform: Greenhouse.Label(),
		}
		if len(job.Departments) > 0 {
			posting.Department = job.Departments[0].Name
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

// leverBoard fetches GET /v0/postings/{token}.
type leverBoard struct {
	client  *http.Client
	baseURL string
}

func (b *leverBoard) Platform() Platform { return Lever }

func (b *leverBoard) Jobs(ctx context.Context, token string) ([]types.JobPosting, error) {
	base := b.baseURL
	if base == "" {
		base = leverBaseURL
	}

	var payload []struct {
		Text       string `json:"text"`
		Categories struct {
			Location string `json:"location"`
			Team     string `json:"team"`
		} `json:"categories"`
		HostedURL string `json:"hostedUrl"`
	}
	url := fmt.Sprintf("%s/v0/postings/%s", base, token)
	if err := getJSON(ctx, b.client, url, &payload); err != nil {
		return nil, err
	}

	postings := make([]types.JobPosting, 0, len(payload))
	for _, job := range payload {
		postings = append(postings, types.JobPosting{
			Title:      job.Text,
			Location:   job.Categories.Location,
			Department: job.Categories.Team,
			URL:        job.HostedURL,
			Platform:   Lever.Label(),
		})
	}
	return postings, nil
}

// ashbyBoard has no public JSON API. A 200 on the board page yields a
// single requires-scraping sentinel carrying the board URL, which tells
// the orchestrator to render that URL instead of running generic
// career-page discovery.
type ashbyBoard struct {
	client  *http.Client
	baseURL string
}

func (b *ashbyBoard) Platform() Platform { return Ashby }

func (b *ashbyBoard) Jobs(ctx context.Context, token string) ([]types.JobPosting, error) {
	base := b.baseURL
	if base == "" {
		base = ashbyBaseURL
	}
	boardURL := fmt.Sprintf("%s/%s", base, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	return []types.JobPosting{{
		Platform:         Ashby.Label(),
		URL:              boardURL,
		RequiresScraping: true,
	}}, nil
}
