package reelapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/session"
	"github.com/jonesrussell/reelranker/internal/transport"
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

// recordingCaller records calls and answers with a canned JSON body.
type recordingCaller struct {
	calls    []call
	response string
	err      error
}

func (r *recordingCaller) Get(_ context.Context, path string, query url.Values, out any) error {
	r.calls = append(r.calls, call{method: http.MethodGet, path: path, query: query})
	return r.answer(out)
}

func (r *recordingCaller) Post(_ context.Context, path string, body, out any) error {
	r.calls = append(r.calls, call{method: http.MethodPost, path: path, body: body})
	return r.answer(out)
}

func (r *recordingCaller) answer(out any) error {
	if r.err != nil {
		return r.err
	}
	if r.response == "" || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(r.response), out)
}

func TestFacades_PathTable(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		invoke func(api *reelapi.API) error
		method string
		path   string
	}{
		{"generate", func(api *reelapi.API) error {
			_, err := api.Content.Generate(ctx, reelapi.GenerateRequest{Topic: "ai"})
			return err
		}, http.MethodPost, "/api/v1/generate"},
		{"analyze topic", func(api *reelapi.API) error {
			_, err := api.Content.AnalyzeTopic(ctx, "ai")
			return err
		}, http.MethodPost, "/api/v1/generate/analyze-topic"},
		{"hashtags", func(api *reelapi.API) error {
			_, err := api.Content.GenerateHashtags(ctx, reelapi.GenerateRequest{Topic: "ai"})
			return err
		}, http.MethodPost, "/api/v1/generate/hashtags"},
		{"score", func(api *reelapi.API) error {
			_, err := api.Scoring.ScoreTitle(ctx, reelapi.ScoreRequest{Title: "t"})
			return err
		}, http.MethodPost, "/api/v1/score"},
		{"score batch", func(api *reelapi.API) error {
			_, err := api.Scoring.ScoreTitles(ctx, []reelapi.ScoreRequest{{Title: "t"}})
			return err
		}, http.MethodPost, "/api/v1/score/batch"},
		{"shorts trending", func(api *reelapi.API) error {
			_, err := api.Shorts.Trending(ctx, reelapi.TrendingParams{})
			return err
		}, http.MethodGet, "/api/v1/shorts/trending"},
		{"shorts search", func(api *reelapi.API) error {
			_, err := api.Shorts.Search(ctx, "cats", 0)
			return err
		}, http.MethodGet, "/api/v1/shorts/search"},
		{"shorts video", func(api *reelapi.API) error {
			_, err := api.Shorts.Video(ctx, "abc123")
			return err
		}, http.MethodGet, "/api/v1/shorts/video/abc123"},
		{"topics trending", func(api *reelapi.API) error {
			_, err := api.Topics.Trending(ctx)
			return err
		}, http.MethodGet, "/api/v1/topics/trending"},
		{"topic analysis escapes", func(api *reelapi.API) error {
			_, err := api.Topics.Analysis(ctx, "ai & ml/2025")
			return err
		}, http.MethodGet, "/api/v1/topics/analysis/ai%20&%20ml%2F2025"},
		{"viral trends", func(api *reelapi.API) error {
			_, err := api.Trends.Viral(ctx)
			return err
		}, http.MethodGet, "/api/v1/trends/viral"},
		{"trend analysis", func(api *reelapi.API) error {
			_, err := api.Trends.Analysis(ctx, "cricket")
			return err
		}, http.MethodGet, "/api/v1/trends/analysis/cricket"},
		{"health", func(api *reelapi.API) error {
			api.Health.Check(ctx)
			return nil
		}, http.MethodGet, "/health"},
		{"status", func(api *reelapi.API) error {
			_, err := api.Health.Status(ctx)
			return err
		}, http.MethodGet, "/api/v1/status"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caller := &recordingCaller{}
			require.NoError(t, tc.invoke(reelapi.New(caller)))
			require.Len(t, caller.calls, 1)
			assert.Equal(t, tc.method, caller.calls[0].method)
			assert.Equal(t, tc.path, caller.calls[0].path)
		})
	}
}

func TestShorts_TrendingQuery(t *testing.T) {
	caller := &recordingCaller{response: `{"topic":"ai","videos":[{"video_id":"def456","views":"7.5M","likes":250000}]}`}
	api := reelapi.New(caller)

	out, err := api.Shorts.Trending(context.Background(), reelapi.TrendingParams{Topic: "ai", Limit: 5, Region: "IN"})
	require.NoError(t, err)

	q := caller.calls[0].query
	assert.Equal(t, "ai", q.Get("topic"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, "IN", q.Get("region"))

	require.Len(t, out.Videos, 1)
	assert.Equal(t, reelapi.Count(7_500_000), out.Videos[0].Views)
	assert.Equal(t, reelapi.Count(250_000), out.Videos[0].Likes)
}

func TestShorts_TrendingOmitsZeroParams(t *testing.T) {
	caller := &recordingCaller{}
	_, err := reelapi.New(caller).Shorts.Trending(context.Background(), reelapi.TrendingParams{})
	require.NoError(t, err)
	assert.Empty(t, caller.calls[0].query)
}

func TestScoring_ScoreTitleCopiesTitle(t *testing.T) {
	caller := &recordingCaller{response: `{"viral_score":7.2,"reasons":["Good title length"],"suggestions":[]}`}
	out, err := reelapi.New(caller).Scoring.ScoreTitle(context.Background(), reelapi.ScoreRequest{Title: "My Title"})
	require.NoError(t, err)
	assert.Equal(t, "My Title", out.Title)
	assert.InDelta(t, 7.2, out.ViralScore, 0.0001)
}

func TestScoring_BatchBodyIsBareArray(t *testing.T) {
	caller := &recordingCaller{response: `{"results":[],"total":0}`}
	_, err := reelapi.New(caller).Scoring.ScoreTitles(context.Background(), []reelapi.ScoreRequest{{Title: "A"}})
	require.NoError(t, err)

	raw, err := json.Marshal(caller.calls[0].body)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"A","tags":[],"hashtags":[],"topic":null}]`, string(raw))
}

func TestHealth_CheckNormalizesFailure(t *testing.T) {
	caller := &recordingCaller{err: errors.New("connection refused")}
	report := reelapi.New(caller).Health.Check(context.Background())

	assert.Equal(t, reelapi.HealthUnhealthy, report.Status)
	assert.Equal(t, "connection refused", report.Error)
	assert.Nil(t, report.Data)
	assert.False(t, report.Healthy())
}

func TestHealth_CheckHealthy(t *testing.T) {
	caller := &recordingCaller{response: `{"status":"healthy","version":"1.0.0","environment":"development"}`}
	report := reelapi.New(caller).Health.Check(context.Background())

	assert.True(t, report.Healthy())
	require.NotNil(t, report.Data)
	assert.Equal(t, "1.0.0", report.Data.Version)
}

func TestGenerateRequest_Validate(t *testing.T) {
	assert.NoError(t, reelapi.GenerateRequest{Topic: "ai"}.Validate())
	assert.NoError(t, reelapi.GenerateRequest{Topic: "ai", Count: 20}.Validate())
	assert.Error(t, reelapi.GenerateRequest{Topic: "ai", Count: 21}.Validate())
	assert.Error(t, reelapi.GenerateRequest{Topic: "ai", Count: -1}.Validate())
	assert.Error(t, reelapi.GenerateRequest{Topic: "  "}.Validate())
}

func TestBatchRequest_Validate(t *testing.T) {
	assert.Error(t, reelapi.BatchRequest{}.Validate())
	assert.Error(t, reelapi.BatchRequest{{Title: "ok"}, {Title: " "}}.Validate())
	assert.NoError(t, reelapi.BatchRequest{{Title: "ok"}}.Validate())
}

// The facades and the transport together: a 401 from any facade tears the
// session down and redirects once.
func TestFacades_UnauthorizedThroughTransport(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer expired", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	ctx := context.Background()
	sess := session.New(session.NewMemoryStore(""))
	require.NoError(t, sess.Set(ctx, "expired"))

	var redirects atomic.Int32
	client, err := transport.NewClient(transport.Config{BaseURL: server.URL}, sess,
		transport.WithRedirector(session.RedirectFunc(func(context.Context, string) { redirects.Add(1) })))
	require.NoError(t, err)

	_, err = reelapi.New(client).Topics.Trending(ctx)
	require.Error(t, err)
	assert.True(t, transport.IsUnauthorized(err))
	assert.Equal(t, int32(1), redirects.Load())
	assert.Equal(t, int32(1), hits.Load())

	_, ok := sess.Token()
	assert.False(t, ok)
}

func TestContent_GenerateRejectedBeforeSend(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client, err := transport.NewClient(transport.Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = reelapi.New(client).Content.Generate(context.Background(), reelapi.GenerateRequest{Topic: "ai", Count: 50})
	assert.Equal(t, transport.KindClientSetup, transport.KindOf(err))
	assert.Equal(t, int32(0), hits.Load())
}
