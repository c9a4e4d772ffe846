package mockserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/reelranker/internal/mockserver"
	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/session"
	"github.com/jonesrussell/reelranker/internal/transport"
)

type redirectCounter struct {
	calls  atomic.Int32
	target atomic.Value
}

func (r *redirectCounter) Redirect(_ context.Context, target string) {
	r.calls.Add(1)
	r.target.Store(target)
}

func startServer(t *testing.T, cfg mockserver.Config) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(mockserver.New(cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newAPI(t *testing.T, baseURL string, sess *session.Session, opts ...transport.Option) *reelapi.API {
	t.Helper()

	client, err := transport.NewClient(transport.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, sess, opts...)
	require.NoError(t, err)
	return reelapi.New(client)
}

func TestServer_Health(t *testing.T) {
	srv := startServer(t, mockserver.Config{Version: "2.0.0"})
	api := newAPI(t, srv.URL, nil)

	report := api.Health.Check(context.Background())
	require.True(t, report.Healthy())
	assert.Equal(t, "2.0.0", report.Data.Version)

	status, err := api.Health.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "operational", status.Status)
	assert.Contains(t, status.Components, "scoring")
}

func TestServer_TrendingRespectsLimit(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	feed, err := api.Shorts.Trending(context.Background(), reelapi.TrendingParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "trending", feed.Topic)
	require.Len(t, feed.Videos, 2)
	assert.Equal(t, reelapi.Count(9_000_000), feed.Videos[0].Views)
}

func TestServer_SearchAndRank(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	results, err := api.Shorts.Search(context.Background(), "shorts", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, results.Total)

	feed, err := api.Shorts.Trending(context.Background(), reelapi.TrendingParams{})
	require.NoError(t, err)
	ranked, err := ranking.Rank(feed.Videos, ranking.SortByEngagement)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "abc123", ranked[0].ID)
	assert.Equal(t, "ghi789", ranked[2].ID)
}

func TestServer_VideoPathEscaping(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	video, err := api.Shorts.Video(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "History Shorts", video.ChannelTitle)

	// The escaped slash reaches the video handler as one segment.
	_, err = api.Shorts.Video(context.Background(), "missing/id")
	var serverErr *transport.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.Status)
	assert.Equal(t, "Video not found", serverErr.Message)
}

func TestServer_TopicAnalysisWithSpaces(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	analysis, err := api.Topics.Analysis(context.Background(), "indian independence")
	require.NoError(t, err)
	assert.Equal(t, "indian independence", analysis.Topic)
	assert.Contains(t, analysis.TrendingKeywords, "patriotism")

	fallback, err := api.Topics.Analysis(context.Background(), "street food")
	require.NoError(t, err)
	assert.Equal(t, []string{"street", "food"}, fallback.TrendingKeywords)
}

func TestServer_GenerateAndHashtags(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	resp, err := api.Content.Generate(context.Background(), reelapi.GenerateRequest{Topic: "AI", Count: 3})
	require.NoError(t, err)
	require.Len(t, resp.Titles, 3)
	assert.Len(t, resp.Hashtags, 3)
	assert.Equal(t, "pattern", resp.Provider)
	for i := 1; i < len(resp.Titles); i++ {
		assert.GreaterOrEqual(t, resp.Titles[i-1].ViralScore, resp.Titles[i].ViralScore)
	}

	tags, err := api.Content.GenerateHashtags(context.Background(), reelapi.GenerateRequest{Topic: "world cup"})
	require.NoError(t, err)
	assert.Equal(t, "#WorldCup", tags.Hashtags[0])
}

func TestServer_GenerateRejectsLargeCount(t *testing.T) {
	router := mockserver.New(mockserver.Config{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, reelapi.PathGenerate, strings.NewReader(`{"topic":"ai","count":50}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Count cannot exceed 20","status_code":400}`, rec.Body.String())
}

func TestServer_TrendAnalysisPeriod(t *testing.T) {
	router := mockserver.New(mockserver.Config{}, nil).Handler()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, reelapi.PathTrendAnalysis+"ai?period=1y", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, reelapi.PathTrendAnalysis+"ai?period=30d", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis reelapi.TrendAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "30d", analysis.Period)
	require.Len(t, analysis.Points, 1)
	assert.Equal(t, "2025-08-09", analysis.Points[0].Date)
}

func TestServer_BatchScoresAlignToInput(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	lines := []string{"Hi", "", "The Shocking Truth About AI"}
	outcome, err := ranking.ScoreBatch(context.Background(), api.Scoring, lines)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hi", "The Shocking Truth About AI"}, outcome.Titles)
	require.Len(t, outcome.Results, 2)
	assert.InDelta(t, 5, outcome.Results[0].ViralScore, 0.001)
	assert.InDelta(t, 8, outcome.Results[1].ViralScore, 0.001)
	assert.Empty(t, outcome.Missing)
	assert.Equal(t, 2, outcome.Total)
}

func TestServer_ScoreSingle(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)

	result, err := api.Scoring.ScoreTitle(context.Background(), reelapi.ScoreRequest{Title: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", result.Title)
	assert.NotEmpty(t, result.Suggestions)
}

func TestServer_AuthRejectionClearsSession(t *testing.T) {
	const secret = "dev-secret"
	srv := startServer(t, mockserver.Config{JWTSecret: secret})

	sess := session.New(nil)
	require.NoError(t, sess.Set(context.Background(), "not-a-valid-token"))
	redirects := &redirectCounter{}
	api := newAPI(t, srv.URL, sess, transport.WithRedirector(redirects))

	_, err := api.Topics.Trending(context.Background())
	require.True(t, transport.IsUnauthorized(err))
	_, ok := sess.Token()
	assert.False(t, ok)
	assert.Equal(t, int32(1), redirects.calls.Load())
	assert.Equal(t, transport.DefaultLoginURL, redirects.target.Load())

	token, _, err := session.MintDevToken(secret, "tester", time.Hour)
	require.NoError(t, err)
	require.NoError(t, sess.Set(context.Background(), token))

	topics, err := api.Topics.Trending(context.Background())
	require.NoError(t, err)
	assert.Len(t, topics.TrendingTopics, 3)

	// Health sits outside the protected group.
	assert.True(t, api.Health.Check(context.Background()).Healthy())
}

func TestServer_RateLimit(t *testing.T) {
	srv := startServer(t, mockserver.Config{RatePerMinute: 1})
	api := newAPI(t, srv.URL, nil)

	_, err := api.Trends.Viral(context.Background())
	require.NoError(t, err)

	_, err = api.Trends.Viral(context.Background())
	require.True(t, transport.IsRateLimited(err))

	var serverErr *transport.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.NotNil(t, serverErr.RateLimit)
	assert.GreaterOrEqual(t, serverErr.RateLimit.RetryAfter, time.Second)
	assert.Equal(t, 1, serverErr.RateLimit.Limit)
	assert.Equal(t, 0, serverErr.RateLimit.Remaining)
	assert.Equal(t, "Rate limit exceeded", serverErr.Message)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	router := mockserver.New(mockserver.Config{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, reelapi.PathHealth, nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	srv := startServer(t, mockserver.Config{})
	api := newAPI(t, srv.URL, nil)
	api.Health.Check(context.Background())

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reelranker_stub_requests_total{route="/health",status="200"} 1`)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := mockserver.New(mockserver.Config{Addr: "127.0.0.1:0"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
