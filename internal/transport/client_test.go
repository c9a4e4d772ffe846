package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/reelranker/internal/session"
	"github.com/jonesrussell/reelranker/internal/transport"
)

type echoPayload struct {
	Auth        string `json:"auth"`
	ContentType string `json:"content_type"`
	RequestID   string `json:"request_id"`
	Query       string `json:"query"`
	Body        string `json:"body"`
}

func newEchoServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw, _ := json.Marshal(body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echoPayload{
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-ID"),
			Query:       r.URL.RawQuery,
			Body:        string(raw),
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, baseURL string, sess *session.Session, opts ...transport.Option) *transport.Client {
	t.Helper()

	client, err := transport.NewClient(transport.Config{BaseURL: baseURL}, sess, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := transport.NewClient(transport.Config{BaseURL: "not a url"}, nil)
	require.Error(t, err)

	_, err = transport.NewClient(transport.Config{BaseURL: "/relative"}, nil)
	require.Error(t, err)
}

func TestClient_AuthorizationHeader(t *testing.T) {
	var hits atomic.Int32
	server := newEchoServer(t, &hits)
	ctx := context.Background()

	sess := session.New(nil)
	client := newClient(t, server.URL, sess)

	var out echoPayload
	require.NoError(t, client.Get(ctx, "/echo", nil, &out))
	assert.Empty(t, out.Auth, "no token means no Authorization header")
	assert.Equal(t, "application/json", out.ContentType)

	require.NoError(t, sess.Set(ctx, "abc"))
	require.NoError(t, client.Get(ctx, "/echo", nil, &out))
	assert.Equal(t, "Bearer abc", out.Auth)

	require.NoError(t, client.Post(ctx, "/echo", map[string]string{"k": "v"}, &out))
	assert.Equal(t, "Bearer abc", out.Auth)
	assert.JSONEq(t, `{"k":"v"}`, out.Body)

	require.NoError(t, sess.Clear(ctx))
	require.NoError(t, client.Get(ctx, "/echo", nil, &out))
	assert.Empty(t, out.Auth)
	assert.Equal(t, int32(4), hits.Load())
}

func TestClient_QueryAndDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "reelranker-cli", r.Header.Get("X-Client"))
		assert.Equal(t, "/api/v1/shorts/search", r.URL.Path)
		assert.Equal(t, "cats dogs", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := transport.NewClient(transport.Config{
		BaseURL:        server.URL + "/",
		DefaultHeaders: map[string]string{"X-Client": "reelranker-cli"},
	}, nil)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, client.Get(context.Background(), "/api/v1/shorts/search", url.Values{"query": {"cats dogs"}}, &out))
}

func TestClient_RequestIDStage(t *testing.T) {
	var hits atomic.Int32
	server := newEchoServer(t, &hits)

	client, err := transport.NewClient(transport.Config{BaseURL: server.URL, RequestID: true}, nil)
	require.NoError(t, err)

	var first, second echoPayload
	require.NoError(t, client.Get(context.Background(), "/echo", nil, &first))
	require.NoError(t, client.Get(context.Background(), "/echo", nil, &second))

	assert.Len(t, first.RequestID, 36)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestClient_UnauthorizedClearsSessionAndRedirectsOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	ctx := context.Background()
	store := session.NewMemoryStore("")
	sess := session.New(store)
	require.NoError(t, sess.Set(ctx, "stale"))

	var redirects []string
	client, err := transport.NewClient(transport.Config{BaseURL: server.URL, LoginURL: "/signin"}, sess,
		transport.WithRedirector(session.RedirectFunc(func(_ context.Context, target string) {
			redirects = append(redirects, target)
		})))
	require.NoError(t, err)

	err = client.Get(ctx, "/api/v1/topics/trending", nil, nil)
	require.Error(t, err)

	assert.Equal(t, transport.KindServer, transport.KindOf(err))
	assert.True(t, transport.IsUnauthorized(err))
	assert.Equal(t, []string{"/signin"}, redirects)
	assert.Equal(t, int32(1), hits.Load())

	_, ok := sess.Token()
	assert.False(t, ok)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestClient_RateLimitedIsSingleAttempt(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "60")
		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded","retry_after":60}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL, nil)
	err := client.Post(context.Background(), "/api/v1/score", map[string]string{"title": "x"}, nil)
	require.Error(t, err)

	assert.True(t, transport.IsRateLimited(err))
	var serverErr *transport.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusTooManyRequests, serverErr.Status)
	assert.Equal(t, "Rate limit exceeded", serverErr.Message)
	require.NotNil(t, serverErr.RateLimit)
	assert.Equal(t, 60*time.Second, serverErr.RateLimit.RetryAfter)
	assert.Equal(t, 100, serverErr.RateLimit.Limit)
	assert.Equal(t, 0, serverErr.RateLimit.Remaining)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := transport.NewClient(transport.Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	err = client.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	assert.Equal(t, transport.KindNetwork, transport.KindOf(err))

	var netErr *transport.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout)
	_, isServer := transport.StatusCode(err)
	assert.False(t, isServer)
}

func TestClient_ConnectionRefusedIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newClient(t, baseURL, nil)
	err := client.Get(context.Background(), "/health", nil, nil)
	require.Error(t, err)

	var netErr *transport.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.False(t, netErr.Timeout)
}

func TestClient_CancelledContextIsNetworkError(t *testing.T) {
	var hits atomic.Int32
	server := newEchoServer(t, &hits)
	client := newClient(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/echo", nil, nil)
	require.Error(t, err)
	assert.Equal(t, transport.KindNetwork, transport.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

type invalidBody struct{}

func (invalidBody) Validate() error { return errors.New("count must be between 1 and 20") }

func TestClient_SetupFailureSendsNothing(t *testing.T) {
	var hits atomic.Int32
	server := newEchoServer(t, &hits)

	t.Run("failing interceptor", func(t *testing.T) {
		client := newClient(t, server.URL, nil, transport.WithInterceptor(func(*transport.RequestContext) error {
			return errors.New("signing key unavailable")
		}))

		err := client.Get(context.Background(), "/echo", nil, nil)
		require.Error(t, err)
		assert.Equal(t, transport.KindClientSetup, transport.KindOf(err))
	})

	t.Run("invalid body", func(t *testing.T) {
		client := newClient(t, server.URL, nil)
		err := client.Post(context.Background(), "/echo", invalidBody{}, nil)

		var setupErr *transport.ClientSetupError
		require.True(t, errors.As(err, &setupErr))
		assert.Contains(t, setupErr.Message, "between 1 and 20")
	})

	t.Run("unmarshalable body", func(t *testing.T) {
		client := newClient(t, server.URL, nil)
		err := client.Post(context.Background(), "/echo", map[string]any{"ch": make(chan int)}, nil)
		assert.Equal(t, transport.KindClientSetup, transport.KindOf(err))
	})

	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_InterceptorSeesCoreStagesFirst(t *testing.T) {
	var hits atomic.Int32
	server := newEchoServer(t, &hits)

	sess := session.New(session.NewMemoryStore(""))
	require.NoError(t, sess.Set(context.Background(), "tok"))

	var seen transport.RequestContext
	client := newClient(t, server.URL, sess, transport.WithInterceptor(func(rc *transport.RequestContext) error {
		seen = *rc
		return nil
	}))

	require.NoError(t, client.Get(context.Background(), "/echo", nil, nil))
	assert.Equal(t, "application/json", seen.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
	assert.False(t, seen.Metadata.StartTime.IsZero())
}

func TestClient_ServerErrorMessage(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusNotFound, `{"detail":"Video not found"}`, "Video not found"},
		{"detail list", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","count"],"msg":"ensure this value is less than or equal to 20"}]}`,
			"count: ensure this value is less than or equal to 20"},
		{"error field", http.StatusBadRequest, `{"error":"Topic is required"}`, "Topic is required"},
		{"message field", http.StatusInternalServerError, `{"message":"boom"}`, "boom"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			err := newClient(t, server.URL, nil).Get(context.Background(), "/x", nil, nil)

			var serverErr *transport.ServerError
			require.True(t, errors.As(err, &serverErr))
			assert.Equal(t, tc.status, serverErr.Status)
			assert.Equal(t, tc.message, serverErr.Message)
			assert.Equal(t, tc.body, serverErr.Body)
			assert.False(t, serverErr.RateLimited)
		})
	}
}

func TestClient_UndecodableSuccessIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	var out map[string]any
	err := newClient(t, server.URL, nil).Get(context.Background(), "/x", nil, &out)
	code, ok := transport.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, code)
}

func TestClient_Metrics(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)
	client := newClient(t, server.URL, nil, transport.WithMetrics(metrics))

	require.NoError(t, client.Get(context.Background(), "/ok", nil, nil))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RequestDuration))

	status.Store(http.StatusInternalServerError)
	require.Error(t, client.Get(context.Background(), "/fail", nil, nil))
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RequestsFailed.WithLabelValues("server", "500")), 0.001)
}

func TestClient_SpanPerCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	client := newClient(t, server.URL, nil, transport.WithTracerProvider(tp))

	require.NoError(t, client.Get(context.Background(), "/ok", nil, nil))
	require.Error(t, client.Post(context.Background(), "/fail", map[string]string{"a": "b"}, nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "reelranker.get", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.String("http.path", "/ok"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "reelranker.post", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, transport.KindServer.String(), spans[1].Status().Description)
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, transport.KindNone, transport.KindOf(errors.New("plain")))
	assert.Equal(t, transport.KindNone, transport.KindOf(nil))
	assert.False(t, transport.IsRateLimited(nil))
}
