// Package config loads topochart settings from a TOML file.
//
// Settings come from three layers, later ones winning:
//
//  1. Defaults in code ([Default])
//  2. The config file: $XDG_CONFIG_HOME/topochart/config.toml, or the path
//     given with --config
//  3. Command-line flags (applied by the CLI)
//
// A missing default file is not an error; a missing explicit file is.
//
// # Example
//
//	[chart]
//	width = 800
//	height = 500
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "sqlite"
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/force"
	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/store"
)

// AppName names the config, cache and data directories.
const AppName = "topochart"

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the complete configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Chart  ChartConfig  `toml:"chart"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// ChartConfig holds chart geometry and physics settings.
type ChartConfig struct {
	Width             float64      `toml:"width"`
	Height            float64      `toml:"height"`
	Margin            chart.Margin `toml:"margin"`
	Seed              uint64       `toml:"seed"`
	CollideRadius     float64      `toml:"collide_radius"`
	CollideIterations int          `toml:"collide_iterations"`
}

// RenderConfig holds static rendering defaults.
type RenderConfig struct {
	Engine  string   `toml:"engine"`
	Formats []string `toml:"formats"`
	Scale   float64  `toml:"scale"`
	Strict  bool     `toml:"strict"`
}

// CacheConfig selects the layout/artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`   // file, memory, redis, none
	Dir      string `toml:"dir"`       // file backend root; empty means XDG cache dir
	RedisURL string `toml:"redis_url"` // redis backend
	Prefix   string `toml:"prefix"`    // key prefix for shared backends
}

// StoreConfig selects the snapshot store used by the server.
type StoreConfig struct {
	Backend  string `toml:"backend"`   // memory, sqlite, mongo
	Path     string `toml:"path"`      // sqlite file; empty means XDG data dir
	MongoURI string `toml:"mongo_uri"` // mongo backend
}

// ServerConfig configures `topochart serve`.
type ServerConfig struct {
	Addr          string        `toml:"addr"`
	StepInterval  time.Duration `toml:"step_interval"`
	HoverEndpoint bool          `toml:"hover_endpoint"` // embed the hover POST endpoint in served svgs
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Chart: ChartConfig{
			Width:             chart.DefaultWidth,
			Height:            chart.DefaultHeight,
			Margin:            chart.DefaultMargin,
			Seed:              pipeline.DefaultSeed,
			CollideRadius:     chart.DefaultCollideRadius,
			CollideIterations: chart.DefaultCollideIterations,
		},
		Render: RenderConfig{
			Engine:  pipeline.DefaultEngine,
			Formats: []string{render.FormatSVG},
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  AppName + ":",
		},
		Store: StoreConfig{
			Backend: store.BackendSQLite,
		},
		Server: ServerConfig{
			Addr:          "localhost:8080",
			StepInterval:  force.DefaultInterval,
			HoverEndpoint: true,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path
// means [DefaultPath], which may be absent.
func Load(path string) (Config, []string, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil, nil
	}
	if err != nil {
		return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. The
// second return value lists keys the file set that no field consumed.
func Parse(data []byte) (Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, unknown, err
	}
	return cfg, unknown, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, errors.UserMessage(err))
		}
	}

	add(errors.ValidateDimension("chart.width", c.Chart.Width))
	add(errors.ValidateDimension("chart.height", c.Chart.Height))
	add(pipeline.ValidateEngine(c.Render.Engine))
	add(pipeline.ValidateFormats(c.Render.Formats))
	if c.Chart.CollideIterations < 1 {
		problems = append(problems, "chart.collide_iterations must be at least 1")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		problems = append(problems, "log.level must be debug, info, warn or error")
	}
	if !slices.Contains([]string{CacheFile, CacheMemory, CacheRedis, CacheNone}, c.Cache.Backend) {
		problems = append(problems, "cache.backend must be file, memory, redis or none")
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		problems = append(problems, "cache.redis_url is required for the redis backend")
	}
	if !slices.Contains([]string{store.BackendMemory, store.BackendSQLite, store.BackendMongo}, c.Store.Backend) {
		problems = append(problems, "store.backend must be memory, sqlite or mongo")
	}
	if c.Store.Backend == store.BackendMongo && c.Store.MongoURI == "" {
		problems = append(problems, "store.mongo_uri is required for the mongo backend")
	}
	if c.Server.StepInterval <= 0 {
		problems = append(problems, "server.step_interval must be positive")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ChartOptions returns the chart options the configuration implies.
func (c ChartConfig) ChartOptions() []chart.Option {
	return []chart.Option{
		chart.WithWidth(c.Width),
		chart.WithHeight(c.Height),
		chart.WithMargin(c.Margin),
		chart.WithSeed(c.Seed),
		chart.WithCollide(c.CollideRadius, c.CollideIterations),
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/topochart/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the file cache root: Cache.Dir when set, otherwise
// $XDG_CACHE_HOME/topochart (~/.cache/topochart).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// StorePath returns the sqlite file: Store.Path when set, otherwise
// $XDG_DATA_HOME/topochart/charts.db (~/.local/share/topochart).
func (c Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "charts.db"), nil
}

// StoreDSN returns the argument [store.Open] expects for the backend.
func (c Config) StoreDSN() (string, error) {
	switch c.Store.Backend {
	case store.BackendSQLite:
		return c.StorePath()
	case store.BackendMongo:
		return c.Store.MongoURI, nil
	}
	return "", nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
