package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/config"
	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/session"
	"github.com/jonesrussell/reelranker/internal/transport"
)

// deps is everything a command needs to call the API.
type deps struct {
	cfg      *config.Config
	log      logger.Logger
	session  *session.Session
	client   *transport.Client
	api      *reelapi.API
	registry *prometheus.Registry

	closers []func() error
}

// Close releases the session store and flushes the logger.
func (d *deps) Close() error {
	var errs []error
	for _, closeFn := range d.closers {
		errs = append(errs, closeFn())
	}
	_ = d.log.Sync()
	return errors.Join(errs...)
}

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := a.cfgFile
	if !cmd.Flags().Changed("config") {
		path = config.GetConfigPath(path)
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// newDeps wires config, logger, session store, transport and facades, then
// restores any persisted credential.
func (a *app) newDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := a.newLogger(cfg)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: log, registry: prometheus.NewRegistry()}

	store, closeStore, err := newStore(cmd.Context(), cfg.Session)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	if closeStore != nil {
		d.closers = append(d.closers, closeStore)
	}

	d.session = session.New(store)
	if err = d.session.Restore(cmd.Context()); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	d.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	d.client, err = transport.NewClient(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		LoginURL:  cfg.Auth.LoginURL,
		RequestID: cfg.API.RequestID,
	}, d.session,
		transport.WithLogger(log),
		transport.WithMetrics(transport.NewMetrics(d.registry)),
	)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.api = reelapi.New(d.client)

	log.Debug("Dependencies ready",
		logger.String("base_url", cfg.API.BaseURL),
		logger.String("session_backend", cfg.Session.Backend),
	)
	return d, nil
}

// newStore opens the configured credential store. The returned closer may be nil.
func newStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func() error, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(""), nil, nil
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(ctx, session.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open redis session store: %w", err)
		}
		return session.NewRedisStore(client, cfg.Redis.Prefix, cfg.Key), client.Close, nil
	case config.SessionBackendFile, "":
		return session.NewFileStore(cfg.File, cfg.Key), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// withDeps runs fn with wired dependencies and closes them afterwards.
func (a *app) withDeps(cmd *cobra.Command, fn func(ctx context.Context, d *deps) error) error {
	d, err := a.newDeps(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return fn(cmd.Context(), d)
}
