// Package cli implements the planview command-line interface.
//
// This package provides commands for analyzing graph descriptions, running
// whole batches offline, rendering analysis results, and serving the HTTP
// API. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - analyze: Analyze a single graph description
//   - batch: Run a batch of descriptions through the full pipeline
//   - render: Draw an analysis as DOT, SVG, or PNG
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/planview/planview/internal/config"
	"github.com/planview/planview/pkg/buildinfo"
	"github.com/planview/planview/pkg/cache"
	"github.com/planview/planview/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "planview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Planview analyzes graphs for planarity",
		Long:         `Planview decides whether graphs can be drawn without edge crossings, produces embeddings or conflict certificates, computes layouts, and decomposes graphs into biconnected blocks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for one-shot CLI use, backed by the
// file cache unless caching is disabled.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, *pipeline.WorkerPool, error) {
	store, err := newLocalCache(noCache)
	if err != nil {
		return nil, nil, err
	}
	pool := pipeline.NewPool(pipeline.PoolConfig{Logger: c.Logger})
	return pipeline.NewRunner(store, pool, c.Logger), pool, nil
}

func newLocalCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newConfiguredCache builds the cache backend selected by the service config.
func newConfiguredCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "none":
		return cache.NewNullCache(), nil
	case "file":
		return cache.NewFileCache(cfg.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "mongo":
		return cache.NewMongoCache(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/planview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
