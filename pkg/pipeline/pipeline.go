// Package pipeline provides the static rendering pipeline for topochart.
//
// The CLI `render` command and the server's /render endpoint both turn a
// dataset into files without an interactive session. This package holds
// that logic once so both entry points behave the same.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Take an inline dataset or decode an embedded one, optionally
//     validating it
//  2. Layout: Settle the force simulation (or hand the graph to Graphviz)
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Layouts and artifacts are cached by content hash, so re-rendering an
// unchanged dataset with the same options costs two cache reads.
//
// # Usage
//
//	runner := pipeline.NewRunner(reg, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dataset: "topology",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/cache"
	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Layout engines.
const (
	// EngineForce settles the chart's own d3-force compatible simulation.
	EngineForce = "force"

	// EngineGraphviz delegates placement to Graphviz fdp.
	EngineGraphviz = "graphviz"
)

const (
	// DefaultEngine is the default layout engine.
	DefaultEngine = EngineForce

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Engines lists the supported layout engines.
var Engines = []string{EngineForce, EngineGraphviz}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Dataset string            `json:"dataset,omitempty"` // embedded dataset name
	Data    *topology.Dataset `json:"data,omitempty"`    // inline dataset, wins over Dataset
	Strict  bool              `json:"strict,omitempty"`  // reject datasets that fail validation
	Refresh bool              `json:"refresh,omitempty"` // bypass cache reads

	// Layout options
	Engine string        `json:"engine,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	Margin *chart.Margin `json:"margin,omitempty"`
	Seed   uint64        `json:"seed,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // metadata in Graphviz labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Data is the loaded dataset.
	Data *topology.Dataset

	// DataHash is the content hash of the dataset.
	DataHash string

	// Layout is the computed (or cached) layout.
	Layout Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(render.Formats, f) {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %q (must be one of: %s)", f, strings.Join(render.Formats, ", "))
		}
	}
	return nil
}

// ValidateEngine checks that a layout engine is supported.
func ValidateEngine(engine string) error {
	if !slices.Contains(Engines, engine) {
		return errors.New(errors.ErrCodeInvalidEngine,
			"invalid engine: %q (must be one of: %s)", engine, strings.Join(Engines, ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Dataset == "" && o.Data == nil {
		o.Dataset = registry.DefaultDataset
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Width == 0 {
		o.Width = chart.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = chart.DefaultHeight
	}
	if o.Margin == nil {
		m := chart.DefaultMargin
		o.Margin = &m
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and validates the result.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := errors.ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", o.Height); err != nil {
		return err
	}
	if w, h := o.innerSize(); w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeInvalidDimension, "margins leave no room for content (%gx%g)", w, h)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender applies render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// IsGraphviz reports whether Graphviz computes the layout.
func (o *Options) IsGraphviz() bool {
	return o.Engine == EngineGraphviz
}

// Source names where the dataset comes from, for logs and hooks.
func (o *Options) Source() string {
	if o.Data != nil {
		return "inline"
	}
	return o.Dataset
}

func (o *Options) innerSize() (w, h float64) {
	m := chart.DefaultMargin
	if o.Margin != nil {
		m = *o.Margin
	}
	return o.Width - m.Left - m.Right, o.Height - m.Top - m.Bottom
}

// ChartOptions returns the chart options equivalent to o.
func (o *Options) ChartOptions() []chart.Option {
	opts := []chart.Option{
		chart.WithWidth(o.Width),
		chart.WithHeight(o.Height),
		chart.WithSeed(o.Seed),
	}
	if o.Margin != nil {
		opts = append(opts, chart.WithMargin(*o.Margin))
	}
	if o.Logger != nil {
		opts = append(opts, chart.WithLogger(o.Logger))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Engine: o.Engine,
		Width:  o.Width,
		Height: o.Height,
		Seed:   o.Seed,
	}
	if o.Margin != nil {
		k.Margin = [4]float64{o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left}
	}
	if o.IsGraphviz() && o.Detailed {
		// Detailed labels live in the DOT source, which is the graphviz layout.
		k.Engine += "+detailed"
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == render.FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
