// Package mockserver is a local stand-in for the ReelRanker API. It serves
// canned video data and a heuristic title score over the same paths and
// payloads the client expects, including 401 and 429 responses.
package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/reelapi"
)

const (
	defaultVersion         = "1.0.0"
	defaultEnvironment     = "development"
	defaultShutdownTimeout = 10 * time.Second
)

// Config controls the stub server.
type Config struct {
	Addr          string
	JWTSecret     string // empty disables auth
	RatePerMinute int    // zero disables the limiter
	Latency       time.Duration
	Version       string
	Environment   string
	Debug         bool
}

func (c *Config) setDefaults() {
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.Environment == "" {
		c.Environment = defaultEnvironment
	}
}

// Server is the stub HTTP server.
type Server struct {
	cfg    Config
	router *gin.Engine
	server *http.Server
	log    logger.Logger
}

// New builds the router and registers every API route.
func New(cfg Config, log logger.Logger) *Server {
	cfg.setDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Path parameters arrive percent-encoded ("a%2Fb") and must match as one segment.
	router.UseRawPath = true
	router.UnescapePathValues = true

	registry := prometheus.NewRegistry()
	metrics := newServerMetrics(registry)

	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(log))
	router.Use(metrics.middleware())

	h := &handlers{cfg: cfg, scorer: NewTitleScorer(), started: time.Now()}

	router.GET(reelapi.PathHealth, h.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	if cfg.Latency > 0 {
		api.Use(latencyMiddleware(cfg.Latency))
	}
	if cfg.JWTSecret != "" {
		api.Use(jwtMiddleware(cfg.JWTSecret))
	}
	if cfg.RatePerMinute > 0 {
		limiter := rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
		api.Use(rateLimitMiddleware(limiter, cfg.RatePerMinute))
	}

	api.GET("/status", h.status)

	api.POST("/generate", h.generate)
	api.POST("/generate/analyze-topic", h.analyzeTopic)
	api.POST("/generate/hashtags", h.generateHashtags)

	api.POST("/score", h.score)
	api.POST("/score/batch", h.scoreBatch)

	api.GET("/shorts/trending", h.trendingShorts)
	api.GET("/shorts/search", h.searchShorts)
	api.GET("/shorts/video/:id", h.video)

	api.GET("/topics/trending", h.trendingTopics)
	api.GET("/topics/analysis/:topic", h.topicAnalysis)

	api.GET("/trends/viral", h.viralTrends)
	api.GET("/trends/analysis/:trend", h.trendAnalysis)

	return &Server{
		cfg:    cfg,
		router: router,
		log:    log,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting stub server",
			logger.String("address", s.server.Addr),
			logger.String("version", s.cfg.Version),
			logger.Bool("auth", s.cfg.JWTSecret != ""),
			logger.Int("rate_per_minute", s.cfg.RatePerMinute),
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("Stub server stopped gracefully")
	return nil
}
