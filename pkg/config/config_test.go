package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Chart.Width != 600 || cfg.Chart.Height != 400 {
		t.Errorf("default size = %gx%g", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Chart.Margin != chart.DefaultMargin {
		t.Errorf("default margin = %+v", cfg.Chart.Margin)
	}
}

func TestParse(t *testing.T) {
	cfg, unknown, err := Parse([]byte(`
[log]
level = "debug"

[chart]
width = 800
height = 500
seed = 7

[chart.margin]
top = 10
right = 10
bottom = 10
left = 10

[render]
engine = "graphviz"
formats = ["svg", "dot"]

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[store]
backend = "memory"

[server]
addr = ":9000"
step_interval = "50ms"
colour = "blue"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Chart.Width != 800 || cfg.Chart.Seed != 7 || cfg.Chart.Margin.Left != 10 {
		t.Errorf("chart = %+v", cfg.Chart)
	}
	if cfg.Chart.CollideIterations != chart.DefaultCollideIterations {
		t.Error("unset keys should keep defaults")
	}
	if cfg.Render.Engine != "graphviz" || len(cfg.Render.Formats) != 2 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Server.StepInterval != 50*time.Millisecond || cfg.Server.Addr != ":9000" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(unknown) != 1 || unknown[0] != "server.colour" {
		t.Errorf("unknown keys = %v", unknown)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", `[chart`, "parse config"},
		{"width", "[chart]\nwidth = -5", "chart.width"},
		{"engine", "[render]\nengine = \"circo\"", "invalid engine"},
		{"format", "[render]\nformats = [\"gif\"]", "invalid format"},
		{"cache", "[cache]\nbackend = \"memcached\"", "cache.backend"},
		{"redis url", "[cache]\nbackend = \"redis\"", "redis_url"},
		{"mongo uri", "[store]\nbackend = \"mongo\"", "mongo_uri"},
		{"level", "[log]\nlevel = \"loud\"", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.toml))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("err = %v, want invalid config", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file falls back to defaults.
	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load(default, missing) = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Error("expected defaults")
	}

	// Missing explicit file is an error.
	if _, _, err := Load(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing explicit) = %v", err)
	}

	path, _ := DefaultPath()
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[chart]\nwidth = 1024\n"), 0o644)
	cfg, _, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chart.Width != 1024 {
		t.Errorf("width = %g, want 1024", cfg.Chart.Width)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Write(&buf); err != nil {
		t.Fatal(err)
	}
	cfg, unknown, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(Write(Default())) = %v\n%s", err, buf.String())
	}
	if len(unknown) != 0 {
		t.Errorf("unknown keys = %v", unknown)
	}
	if cfg.Server.StepInterval != Default().Server.StepInterval {
		t.Errorf("step interval = %v", cfg.Server.StepInterval)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	t.Setenv("XDG_DATA_HOME", "/data")

	if p, _ := DefaultPath(); p != filepath.Join("/cfg", "topochart", "config.toml") {
		t.Errorf("DefaultPath = %s", p)
	}
	cfg := Default()
	if d, _ := cfg.CacheDir(); d != filepath.Join("/cache", "topochart") {
		t.Errorf("CacheDir = %s", d)
	}
	if p, _ := cfg.StoreDSN(); p != filepath.Join("/data", "topochart", "charts.db") {
		t.Errorf("StoreDSN = %s", p)
	}
	cfg.Cache.Dir = "/tmp/c"
	if d, _ := cfg.CacheDir(); d != "/tmp/c" {
		t.Errorf("explicit CacheDir = %s", d)
	}
	cfg.Store.Backend = "memory"
	if p, _ := cfg.StoreDSN(); p != "" {
		t.Errorf("memory StoreDSN = %q", p)
	}
}
