package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/cache"
	"github.com/matzehuels/topochart/pkg/config"
	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/store"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.newRegistry(), ch, keyer, c.Logger), nil
}

func (c *CLI) newRegistry() *registry.Registry {
	return registry.New(c.Logger, registry.WithSeed(c.Config.Chart.Seed))
}

// newCache opens the configured cache backend. A file cache whose
// directory cannot be resolved degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	if noCache {
		return cache.NewNullCache(), keyer, nil
	}

	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), keyer, nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), keyer, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rc, keyer, nil
	}

	dir, err := c.Config.CacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), keyer, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, keyer, nil
}

// openStore opens the configured snapshot store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	dsn, err := c.Config.StoreDSN()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, c.Config.Store.Backend, dsn)
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the configuration.
// Command flags override individual fields.
func (c *CLI) pipelineOptions() pipeline.Options {
	margin := c.Config.Chart.Margin
	return pipeline.Options{
		Engine:  c.Config.Render.Engine,
		Width:   c.Config.Chart.Width,
		Height:  c.Config.Chart.Height,
		Margin:  &margin,
		Seed:    c.Config.Chart.Seed,
		Formats: slices.Clone(c.Config.Render.Formats),
		Scale:   c.Config.Render.Scale,
		Strict:  c.Config.Render.Strict,
		Logger:  c.Logger,
	}
}

// loadDataset reads the file in args, or the named embedded dataset when
// no file is given. It returns the data and a title for display.
func (c *CLI) loadDataset(args []string, example string) (*topology.Dataset, string, error) {
	if len(args) == 1 && example != "" {
		return nil, "", fmt.Errorf("use either a file or --example, not both")
	}
	if len(args) == 1 {
		data, err := topology.ReadDatasetFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return data, args[0], nil
	}
	if example == "" {
		example = registry.DefaultDataset
	}
	data, err := c.newRegistry().Dataset(example)
	if err != nil {
		return nil, "", err
	}
	return data, example, nil
}

// writeDataset writes d to output, or to w when output is empty. An empty
// format follows the output extension.
func writeDataset(w io.Writer, d *topology.Dataset, output string, format topology.Format) error {
	if output == "" {
		return topology.WriteDataset(w, d, format)
	}
	if format == "" {
		format = topology.FormatFromPath(output)
	}
	var buf bytes.Buffer
	if err := topology.WriteDataset(&buf, d, format); err != nil {
		return err
	}
	return writeFile(output, buf.Bytes())
}
