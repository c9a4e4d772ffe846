package session

import (
	"context"

	"github.com/jonesrussell/reelranker/internal/logger"
)

// Redirector sends the user to the authentication boundary after the
// remote service rejects the session.
type Redirector interface {
	Redirect(ctx context.Context, target string)
}

// RedirectFunc adapts a function to the Redirector interface.
type RedirectFunc func(ctx context.Context, target string)

// Redirect calls f.
func (f RedirectFunc) Redirect(ctx context.Context, target string) {
	f(ctx, target)
}

// LogRedirector is the CLI's authentication boundary: it tells the user
// to log in again.
type LogRedirector struct {
	log logger.Logger
}

// NewLogRedirector creates a LogRedirector.
func NewLogRedirector(log logger.Logger) *LogRedirector {
	return &LogRedirector{log: log}
}

func (r *LogRedirector) Redirect(_ context.Context, target string) {
	r.log.Warn("Session expired, log in again",
		logger.String("login_url", target),
		logger.String("hint", "reelranker login --token <token>"),
	)
}
