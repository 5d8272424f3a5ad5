package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineagescope/internal/server"
	"github.com/matzehuels/lineagescope/pkg/cache"
	"github.com/matzehuels/lineagescope/pkg/config"
	"github.com/matzehuels/lineagescope/pkg/pipeline"
	"github.com/matzehuels/lineagescope/pkg/session"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage explorer over HTTP",
		Long: `Serve the lineage explorer over HTTP.

Clients upload a report to POST /api/sessions and then drive the graph with
click, position, view and filter requests against the returned session.
Sessions live in memory by default; set server.session_backend in the
config file to file, redis or mongo to keep them elsewhere. With the redis
backend, rendered artifacts are cached in Redis too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			if backend != "" {
				cfg.SessionBackend = backend
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&backend, "backend", "", "session backend: memory, file, redis, mongo")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Server) error {
	full := c.Config
	full.Server = cfg
	if err := full.Validate(); err != nil {
		return err
	}

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer store.Close()

	artifacts, err := c.newServerCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	runner := pipeline.NewRunner(artifacts, cache.NewScopedKeyer(nil, "server:"), c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		Store:      store,
		Runner:     runner,
		Controller: c.controllerConfig(),
		SessionTTL: cfg.SessionTTL.Duration,
		Logger:     c.Logger,
	})

	printInfo("Serving on %s", StyleLink.Render("http://localhost"+cfg.Addr))
	printKeyValue("Sessions", cfg.SessionBackend)
	printKeyValue("Session TTL", cfg.SessionTTL.String())
	return srv.Serve(ctx)
}

// newSessionStore opens the configured session backend.
func newSessionStore(ctx context.Context, cfg config.Server) (session.Store, error) {
	switch cfg.SessionBackend {
	case config.BackendFile:
		return session.NewFileStore(cfg.SessionDir)
	case config.BackendRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	return session.NewMemoryStore(), nil
}

// newServerCache shares Redis with the session store when that backend is
// configured and falls back to the local file cache otherwise.
func (c *CLI) newServerCache(ctx context.Context, cfg config.Server) (cache.Cache, error) {
	if c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.SessionBackend == config.BackendRedis {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":cache:",
		})
	}
	return c.newCache(false)
}
