// Package transport is the single path every call to the remote service
// takes: request stages, the network round trip, and classification of
// whatever comes back.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/session"
)

const (
	// DefaultTimeout bounds every call made through a Client.
	DefaultTimeout = 30 * time.Second

	// DefaultLoginURL is where a rejected session is redirected.
	DefaultLoginURL = "/login"

	tracerName = "reelranker/transport"
)

// Config configures a Client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	LoginURL       string
	RequestID      bool
}

func (c *Config) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LoginURL == "" {
		c.LoginURL = DefaultLoginURL
	}
}

// Client is the configured caller shared by all endpoint facades. It owns
// the session for every call made through it.
type Client struct {
	cfg        Config
	baseURL    string
	http       *http.Client
	session    *session.Session
	redirector session.Redirector
	log        logger.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	stages     []RequestInterceptor
	extra      []RequestInterceptor
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRedirector sets what happens after a 401.
func WithRedirector(r session.Redirector) Option {
	return func(c *Client) { c.redirector = r }
}

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten by Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracerProvider creates the client's spans from tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// WithInterceptor appends a request stage after the built-in ones.
func WithInterceptor(stage RequestInterceptor) Option {
	return func(c *Client) { c.extra = append(c.extra, stage) }
}

// NewClient creates a Client. A nil session starts an in-memory one.
func NewClient(cfg Config, sess *session.Session, opts ...Option) (*Client, error) {
	cfg.setDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	if sess == nil {
		sess = session.New(nil)
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(base.String(), "/"),
		http:    &http.Client{},
		session: sess,
		log:     logger.NewNop(),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.Timeout = cfg.Timeout
	if c.redirector == nil {
		c.redirector = session.NewLogRedirector(c.log)
	}

	// Order matters: content type, credential, start time, then extras.
	c.stages = []RequestInterceptor{contentTypeStage, c.authStage, c.startTimeStage}
	if cfg.RequestID {
		c.stages = append(c.stages, RequestIDStage)
	}
	c.stages = append(c.stages, ValidateBodyStage)
	c.stages = append(c.stages, c.extra...)

	return c, nil
}

// Session returns the client's session.
func (c *Client) Session() *session.Session {
	return c.session
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// BaseURL returns the normalized base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST with body encoded as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	rc := &RequestContext{
		Method: method,
		Path:   path,
		Query:  query,
		Header: make(http.Header),
		Body:   body,
	}
	for k, v := range c.cfg.DefaultHeaders {
		rc.Header.Set(k, v)
	}

	ctx, span := c.tracer.Start(ctx, "reelranker."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	err := c.roundTrip(ctx, rc, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, rc *RequestContext, out any) error {
	if setupErr := c.runRequestStages(rc); setupErr != nil {
		return c.onSetupFailure(rc, setupErr)
	}

	req, setupErr := c.buildRequest(ctx, rc)
	if setupErr != nil {
		return c.onSetupFailure(rc, setupErr)
	}

	c.log.Debug("Sending request",
		logger.String("method", rc.Method),
		logger.String("path", rc.Path),
		logger.String("request_id", rc.Metadata.RequestID),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.onNetworkFailure(rc, err, isTimeout(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.onNetworkFailure(rc, fmt.Errorf("read response: %w", err), isTimeout(err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.onStatusFailure(ctx, rc, resp, data)
	}

	c.onSuccess(rc, resp.StatusCode)
	return c.decode(rc, resp.StatusCode, data, out)
}

func (c *Client) buildRequest(ctx context.Context, rc *RequestContext) (*http.Request, *ClientSetupError) {
	endpoint := c.baseURL + rc.Path
	if len(rc.Query) > 0 {
		endpoint += "?" + rc.Query.Encode()
	}

	var bodyReader io.Reader
	if rc.Body != nil {
		payload, err := json.Marshal(rc.Body)
		if err != nil {
			return nil, &ClientSetupError{Message: "failed to marshal request: " + err.Error(), Err: err}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, rc.Method, endpoint, bodyReader)
	if err != nil {
		return nil, &ClientSetupError{Message: "failed to create request: " + err.Error(), Err: err}
	}
	req.Header = rc.Header.Clone()
	return req, nil
}

// decode maps a 2xx body onto out. A body that does not fit is reported as
// a server error: the service answered, just not with what it promised.
func (c *Client) decode(rc *RequestContext, status int, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.metrics.observeFailure(KindServer, status)
		return &ServerError{
			Method:  rc.Method,
			Path:    rc.Path,
			Status:  status,
			Body:    string(data),
			Message: "failed to parse response: " + err.Error(),
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
