package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planview/planview/internal/config"
	"github.com/planview/planview/internal/server"
	"github.com/planview/planview/pkg/pipeline"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planview HTTP API",
		Long: `Run the HTTP API.

POST /process-batch accepts a JSON array of graph descriptions and streams
one NDJSON record per item. GET /healthz reports liveness.

Configuration is read from the TOML file given with --config; flags override
the file. Without a file the server listens on :8000 with an in-memory cache
and one worker per CPU.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, configPath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, configPath, addr string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	store, err := newConfiguredCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache backend %q: %w", cfg.Cache.Backend, err)
	}
	defer store.Close()

	pool := pipeline.NewPool(pipeline.PoolConfig{
		Workers:     cfg.Pool.Workers,
		TaskTimeout: cfg.Pool.TaskTimeout.Duration,
		Logger:      c.Logger,
	})
	defer pool.Close()

	runner := pipeline.NewRunner(store, pool, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		runner.TTL = cfg.Cache.TTL.Duration
	}

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"workers", cfg.Pool.Workers)

	return server.New(runner, cfg.Server, c.Logger).Run(ctx)
}
