// Package watch periodically refreshes the trending feed and keeps the
// latest ranked snapshot.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/transport"
)

// Fetcher is the slice of the shorts facade the watcher needs.
type Fetcher interface {
	Trending(ctx context.Context, params reelapi.TrendingParams) (*reelapi.TrendingVideos, error)
}

// Config controls what is fetched and how often.
type Config struct {
	Schedule   string
	Params     reelapi.TrendingParams
	SortBy     ranking.SortKey
	RunOnStart bool
}

// Snapshot is one ranked refresh.
type Snapshot struct {
	At     time.Time              `json:"at"`
	Topic  string                 `json:"topic"`
	Videos []reelapi.VideoSummary `json:"videos"`
}

type metrics struct {
	refreshes   *prometheus.CounterVec
	videos      prometheus.Gauge
	topViews    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reelranker_watch",
			Name:      "refreshes_total",
			Help:      "Trending refreshes by result",
		}, []string{"result"}),
		videos: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reelranker_watch",
			Name:      "videos",
			Help:      "Videos in the latest snapshot",
		}),
		topViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reelranker_watch",
			Name:      "top_video_views",
			Help:      "Views of the top ranked video",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reelranker_watch",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}),
	}
}

// Watcher refreshes the trending feed on a cron schedule.
type Watcher struct {
	cfg      Config
	fetcher  Fetcher
	log      logger.Logger
	metrics  *metrics
	onUpdate func(*Snapshot)
	now      func() time.Time

	mu     sync.RWMutex
	latest *Snapshot
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithRegisterer registers the watcher's collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(w *Watcher) { w.metrics = newMetrics(reg) }
}

// OnUpdate is called after every successful refresh.
func OnUpdate(fn func(*Snapshot)) Option {
	return func(w *Watcher) { w.onUpdate = fn }
}

// New validates the schedule and sort key.
func New(cfg Config, fetcher Fetcher, opts ...Option) (*Watcher, error) {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	if _, err := ranking.ParseSortKey(string(cfg.SortBy)); err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		fetcher:  fetcher,
		log:      logger.NewNop(),
		onUpdate: func(*Snapshot) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = newMetrics(prometheus.NewRegistry())
	}
	return w, nil
}

// Refresh fetches and ranks the feed once.
func (w *Watcher) Refresh(ctx context.Context) (*Snapshot, error) {
	feed, err := w.fetcher.Trending(ctx, w.cfg.Params)
	if err != nil {
		w.metrics.refreshes.WithLabelValues(failureLabel(err)).Inc()
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	ranked, err := ranking.Rank(feed.Videos, w.cfg.SortBy)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{At: w.now(), Topic: feed.Topic, Videos: ranked}
	w.mu.Lock()
	w.latest = snap
	w.mu.Unlock()

	w.metrics.refreshes.WithLabelValues("ok").Inc()
	w.metrics.videos.Set(float64(len(ranked)))
	if len(ranked) > 0 {
		w.metrics.topViews.Set(float64(ranked[0].Views))
	}
	w.metrics.lastSuccess.Set(float64(snap.At.Unix()))

	w.onUpdate(snap)
	return snap, nil
}

func failureLabel(err error) string {
	if kind := transport.KindOf(err); kind != transport.KindNone {
		return kind.String()
	}
	return "error"
}

// Latest returns the most recent snapshot, or nil before the first refresh.
func (w *Watcher) Latest() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

func (w *Watcher) refreshLogged(ctx context.Context) {
	snap, err := w.Refresh(ctx)
	if err != nil {
		w.log.Error("Trending refresh failed",
			logger.Error(err),
			logger.String("kind", transport.KindOf(err).String()),
		)
		return
	}
	w.log.Info("Trending refreshed",
		logger.String("topic", snap.Topic),
		logger.Int("videos", len(snap.Videos)),
		logger.String("sort_by", string(w.cfg.SortBy)),
	)
}

// Run refreshes on schedule until ctx is cancelled. Overlapping runs are
// skipped rather than queued.
func (w *Watcher) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.cfg.Schedule, func() { w.refreshLogged(ctx) }); err != nil {
		return fmt.Errorf("add cron entry: %w", err)
	}

	w.log.Info("Watching trending feed",
		logger.String("schedule", w.cfg.Schedule),
		logger.String("sort_by", string(w.cfg.SortBy)),
	)
	if w.cfg.RunOnStart {
		w.refreshLogged(ctx)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	w.log.Info("Watcher stopped")
	return nil
}
