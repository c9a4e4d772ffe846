package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/mockserver"
)

func (a *app) mockServerCommand() *cobra.Command {
	var (
		addr      string
		jwtSecret string
		rate      int
		latency   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local stand-in for the ReelRanker API",
		Long: `Serve canned videos and heuristic title scores on the same paths as the
ReelRanker API. With --jwt-secret every /api/v1 route requires a token minted by
'reelranker login --mint-secret'. --rate answers 429 once the per-minute budget is spent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := a.newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			flags := cmd.Flags()
			if !flags.Changed("addr") {
				addr = cfg.Mock.Addr
			}
			if !flags.Changed("jwt-secret") {
				jwtSecret = cfg.Mock.JWTSecret
			}
			if !flags.Changed("rate") {
				rate = cfg.Mock.RatePerMinute
			}
			if !flags.Changed("latency") {
				latency = cfg.Mock.Latency
			}

			srv := mockserver.New(mockserver.Config{
				Addr:          addr,
				JWTSecret:     jwtSecret,
				RatePerMinute: rate,
				Latency:       latency,
				Debug:         a.debug,
			}, log)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "require HS256 bearer tokens signed with this secret")
	cmd.Flags().IntVar(&rate, "rate", 0, "requests per minute before 429, 0 disables (default from config)")
	cmd.Flags().DurationVar(&latency, "latency", 0, "delay every API response")
	return cmd
}
