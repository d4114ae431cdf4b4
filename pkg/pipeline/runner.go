package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/cache"
	"github.com/matzehuels/topochart/pkg/observability"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the registry, cache and logger. It
// doesn't store pipeline results, so multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Registry *registry.Registry
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil registry gets the embedded datasets, a
// nil keyer a DefaultKeyer and a nil cache a NullCache (caching disabled).
func NewRunner(reg *registry.Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if reg == nil {
		reg = registry.New(logger)
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Runner{
		Registry: reg,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	data, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Data = data
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(data.Nodes)
	result.Stats.LinkCount = len(data.Links)

	r.Logger.Info("loaded dataset",
		"source", opts.Source(),
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, dataHash, layoutHit, err := r.layout(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.DataHash = dataHash
	result.Layout = layout
	result.Stats.Ticks = layout.Ticks
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", layout.Engine,
		"ticks", layout.Ticks,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, data, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load resolves the dataset and reports the stage to the pipeline hooks.
func (r *Runner) Load(ctx context.Context, opts Options) (*topology.Dataset, error) {
	opts.SetLayoutDefaults()
	source := opts.Source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)

	start := time.Now()
	data, err := Load(r.Registry, opts)
	n := 0
	if data != nil {
		n = len(data.Nodes)
	}
	hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	return data, err
}

// GenerateLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, data *topology.Dataset, opts Options) (Layout, bool, error) {
	l, _, hit, err := r.layout(ctx, data, opts)
	return l, hit, err
}

// GenerateLayout is a convenience wrapper that calls
// GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, data *topology.Dataset, opts Options) (Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, data, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, data *topology.Dataset, opts Options) (Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return Layout{}, "", false, err
	}

	dataHash, err := HashDataset(data)
	if err != nil {
		return Layout{}, "", false, fmt.Errorf("hash dataset: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(dataHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if raw, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := UnmarshalLayout(raw); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, dataHash, true, nil
			}
			// Unreadable entries are recomputed and overwritten.
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Engine, len(data.Nodes))
	start := time.Now()
	l, err := GenerateLayout(data, opts)
	hooks.OnLayoutComplete(ctx, opts.Engine, time.Since(start), err)
	if err != nil {
		return Layout{}, "", false, err
	}

	if raw, err := MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, raw, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "stage", "layout", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(raw))
		}
	}
	return l, dataHash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l Layout, data *topology.Dataset, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	raw, err := MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(raw)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = out
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	sub := opts
	sub.Formats = missing
	rendered, err := RenderFromLayout(ctx, l, data, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, out := range rendered {
		artifacts[format] = out
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "stage", "render", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l Layout, data *topology.Dataset, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, data, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// HashDataset returns the content hash of everything the layout depends
// on: node IDs, types, labels, meta, pins, supplied start positions and
// links. Velocities are excluded.
func HashDataset(d *topology.Dataset) (string, error) {
	type node struct {
		ID    string            `json:"id"`
		Type  topology.NodeType `json:"t"`
		Label string            `json:"l,omitempty"`
		Meta  map[string]any    `json:"m,omitempty"`
		Fixed [2]*float64       `json:"f"`
		Start *[2]float64       `json:"s,omitempty"`
	}
	view := struct {
		Nodes []node           `json:"n"`
		Links []*topology.Link `json:"e"`
	}{Links: d.Links}
	for _, n := range d.Nodes {
		if n != nil {
			v := node{ID: n.ID, Type: n.Type, Label: n.Label, Meta: n.Meta, Fixed: [2]*float64{n.FX, n.FY}}
			if n.Placed() {
				v.Start = &[2]float64{n.X, n.Y}
			}
			view.Nodes = append(view.Nodes, v)
		}
	}
	return cache.HashJSON(view)
}
