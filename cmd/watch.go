package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/render"
	"github.com/jonesrussell/reelranker/internal/watch"
)

const metricsShutdownTimeout = 5 * time.Second

func (a *app) watchCommand() *cobra.Command {
	var (
		schedule    string
		sortBy      string
		metricsAddr string
		params      reelapi.TrendingParams
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh and rank the trending feed on a schedule",
		Long: `Refresh the trending feed on a cron schedule ("@every 5m", "*/10 * * * *"),
print the ranked list after each refresh, and expose Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				if !cmd.Flags().Changed("schedule") {
					schedule = d.cfg.Watch.Schedule
				}
				if !cmd.Flags().Changed("sort") {
					sortBy = d.cfg.Watch.SortBy
				}
				if !cmd.Flags().Changed("limit") {
					params.Limit = d.cfg.Watch.Limit
				}
				if !cmd.Flags().Changed("metrics-addr") {
					metricsAddr = d.cfg.Metrics.Addr
				}

				key, err := ranking.ParseSortKey(sortBy)
				if err != nil {
					return err
				}

				w, err := watch.New(watch.Config{
					Schedule:   schedule,
					Params:     params,
					SortBy:     key,
					RunOnStart: true,
				}, d.api.Shorts,
					watch.WithLogger(d.log),
					watch.WithRegisterer(d.registry),
					watch.OnUpdate(func(s *watch.Snapshot) {
						heading := fmt.Sprintf("%s by %s at %s", s.Topic, key, s.At.Format(time.TimeOnly))
						_ = a.print(s, func(out io.Writer) { render.Videos(out, heading, s.Videos) })
					}),
				)
				if err != nil {
					return err
				}

				if metricsAddr != "" {
					stop := serveMetrics(ctx, metricsAddr, d.registry, d.log)
					defer stop()
				}
				return w.Run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.Flags().StringVar(&sortBy, "sort", "", sortFlagUsage()+" (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address, e.g. :9090")
	cmd.Flags().StringVar(&params.Topic, "topic", "", "restrict to a topic")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "maximum videos per refresh")
	cmd.Flags().StringVar(&params.Region, "region", "", "region code, e.g. IN")
	return cmd
}

// serveMetrics exposes reg on addr until the returned stop function is called.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log logger.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("Serving metrics", logger.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
}
