package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/reelranker/internal/logger"
)

// Header names set by the request stages.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// Metadata travels with a request through both interceptors.
type Metadata struct {
	StartTime time.Time
	RequestID string
}

// RequestContext is the per-call request description. It is built by the
// client, shaped by the request stages, and read-only once sent.
type RequestContext struct {
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     any
	Metadata Metadata
}

// RequestInterceptor is one request stage. A non-nil error aborts the call
// before anything is sent.
type RequestInterceptor func(rc *RequestContext) error

// Validator is implemented by request bodies that can reject themselves
// before they go out.
type Validator interface {
	Validate() error
}

func contentTypeStage(rc *RequestContext) error {
	rc.Header.Set(HeaderContentType, contentTypeJSON)
	return nil
}

func (c *Client) authStage(rc *RequestContext) error {
	if token, ok := c.session.Token(); ok {
		rc.Header.Set(HeaderAuthorization, "Bearer "+token)
	}
	return nil
}

func (c *Client) startTimeStage(rc *RequestContext) error {
	rc.Metadata.StartTime = c.now()
	return nil
}

// RequestIDStage tags each call with a fresh X-Request-ID.
func RequestIDStage(rc *RequestContext) error {
	id := uuid.NewString()
	rc.Metadata.RequestID = id
	rc.Header.Set(HeaderRequestID, id)
	return nil
}

// ValidateBodyStage rejects bodies whose Validate method fails.
func ValidateBodyStage(rc *RequestContext) error {
	if v, ok := rc.Body.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func (c *Client) runRequestStages(rc *RequestContext) *ClientSetupError {
	for _, stage := range c.stages {
		if err := stage(rc); err != nil {
			var setupErr *ClientSetupError
			if errors.As(err, &setupErr) {
				return setupErr
			}
			return &ClientSetupError{Message: err.Error(), Err: err}
		}
	}
	return nil
}

func (c *Client) onSuccess(rc *RequestContext, status int) {
	elapsed := c.now().Sub(rc.Metadata.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}

	c.metrics.observeSuccess(rc.Method, elapsed)
	c.log.Debug("Request completed",
		logger.String("method", rc.Method),
		logger.String("path", rc.Path),
		logger.Int("status", status),
		logger.Duration("elapsed", elapsed),
		logger.String("request_id", rc.Metadata.RequestID),
	)
}

// onStatusFailure classifies a non-2xx response and applies its side effect.
func (c *Client) onStatusFailure(ctx context.Context, rc *RequestContext, resp *http.Response, body []byte) error {
	serverErr := &ServerError{
		Method: rc.Method,
		Path:   rc.Path,
		Status: resp.StatusCode,
		Body:   string(body),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		serverErr.Message = http.StatusText(http.StatusUnauthorized)
		c.invalidateSession(ctx, rc)
	case http.StatusTooManyRequests:
		serverErr.Message = extractMessage(body)
		serverErr.RateLimited = true
		serverErr.RateLimit = parseRateLimit(resp.Header, body, c.now())
		c.log.Warn("Rate limited by remote service",
			logger.String("method", rc.Method),
			logger.String("path", rc.Path),
			logger.Duration("retry_after", serverErr.RateLimit.RetryAfter),
		)
	default:
		serverErr.Message = extractMessage(body)
		c.log.Debug("Request failed",
			logger.String("method", rc.Method),
			logger.String("path", rc.Path),
			logger.Int("status", resp.StatusCode),
			logger.String("message", serverErr.Message),
		)
	}

	c.metrics.observeFailure(KindServer, resp.StatusCode)
	return serverErr
}

// invalidateSession tears the session down after a 401 and sends the user
// to the login boundary. It runs once per 401 response.
func (c *Client) invalidateSession(ctx context.Context, rc *RequestContext) {
	c.log.Warn("Session rejected by remote service, clearing credential",
		logger.String("method", rc.Method),
		logger.String("path", rc.Path),
	)

	// The store may live in redis; a cancelled call context must not stop the teardown.
	if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Error("Failed to delete persisted session", logger.Error(err))
	}
	c.metrics.observeSessionCleared()
	c.redirector.Redirect(ctx, c.cfg.LoginURL)
}

func (c *Client) onNetworkFailure(rc *RequestContext, err error, timeout bool) error {
	netErr := &NetworkError{
		Method:  rc.Method,
		Path:    rc.Path,
		Message: err.Error(),
		Timeout: timeout,
		Err:     err,
	}
	c.log.Error("Request got no response",
		logger.String("method", rc.Method),
		logger.String("path", rc.Path),
		logger.Bool("timeout", timeout),
		logger.Error(err),
	)
	c.metrics.observeFailure(KindNetwork, 0)
	return netErr
}

func (c *Client) onSetupFailure(rc *RequestContext, err *ClientSetupError) error {
	c.log.Error("Request not sent",
		logger.String("method", rc.Method),
		logger.String("path", rc.Path),
		logger.Error(err),
	)
	c.metrics.observeFailure(KindClientSetup, 0)
	return err
}
