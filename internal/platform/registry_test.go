package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(greenhouseURL, leverURL, ashbyURL string) *Registry {
	client := &http.Client{Timeout: 5 * time.Second}
	return &Registry{
		client: client,
		boards: []boardClient{
			&greenhouseBoard{client: client, baseURL: greenhouseURL},
			&leverBoard{client: client, baseURL: leverURL},
			&ashbyBoard{client: client, baseURL: ashbyURL},
		},
		logger: zap.NewNop(),
	}
}

// failing404 returns a server that 404s everything.
func failing404(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGreenhouseBoard_MapsPostings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/boards/acme/jobs", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs":[
			{"title":"Backend Engineer","location":{"name":"Remote"},"departments":[{"name":"Engineering"}],"absolute_url":"https://boards.greenhouse.io/acme/jobs/1"},
			{"title":"Data Scientist","location":{"name":"NYC"},"departments":[],"absolute_url":"https://boards.greenhouse.io/acme/jobs/2"}
		]}`))
	}))
	defer server.Close()

	board := &greenhouseBoard{client: server.Client(), baseURL: server.URL}
	jobs, err := board.Jobs(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Equal(t, "Remote", jobs[0].Location)
	assert.Equal(t, "Engineering", jobs[0].Department)
	assert.Equal(t, "Greenhouse", jobs[0].Platform)
	assert.Empty(t, jobs[1].Department)
}

func TestLeverBoard_MapsPostings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/postings/netflix", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"text":"SRE","categories":{"location":"Remote","team":"Infra"},"hostedUrl":"https://jobs.lever.co/netflix/1"}
		]`))
	}))
	defer server.Close()

	board := &leverBoard{client: server.Client(), baseURL: server.URL}
	jobs, err := board.Jobs(context.Background(), "netflix")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "SRE", jobs[0].Title)
	assert.Equal(t, "Infra", jobs[0].Department)
	assert.Equal(t, "Lever", jobs[0].Platform)
}

func TestAshbyBoard_ReturnsScrapingSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/linear", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>SPA shell</html>"))
	}))
	defer server.Close()

	board := &ashbyBoard{client: server.Client(), baseURL: server.URL}
	jobs, err := board.Jobs(context.Background(), "linear")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].RequiresScraping)
	assert.Empty(t, jobs[0].Title)
	assert.Equal(t, server.URL+"/linear", jobs[0].URL)
}

func TestAshbyBoard_NotFoundMeansNoJobs(t *testing.T) {
	server := failing404(t)
	board := &ashbyBoard{client: server.Client(), baseURL: server.URL}

	jobs, err := board.Jobs(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestTryAll_FirstNonEmptyWins(t *testing.T) {
	greenhouse := failing404(t)
	lever := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"text":"Platform Engineer","categories":{},"hostedUrl":""}]`))
	}))
	defer lever.Close()
	ashby := failing404(t)

	registry := newTestRegistry(greenhouse.URL, lever.URL, ashby.URL)

	jobs := registry.TryAll(context.Background(), "https://jobs.lever.co/acme")
	require.Len(t, jobs, 1)
	assert.Equal(t, "Lever", jobs[0].Platform)
}

func TestTryAll_AllPlatformsFail(t *testing.T) {
	server := failing404(t)
	registry := newTestRegistry(server.URL, server.URL, server.URL)

	jobs := registry.TryAll(context.Background(), "https://acme.com")
	assert.Empty(t, jobs)
}

func TestTryAll_NoToken(t *testing.T) {
	registry := NewRegistry(nil)
	jobs := registry.TryAll(context.Background(), "://bad url")
	assert.Empty(t, jobs)
}

func TestFetchBoard_UnknownPlatform(t *testing.T) {
	registry := NewRegistry(nil)
	_, err := registry.FetchBoard(context.Background(), Workable, "acme")
	assert.Error(t, err)
}
