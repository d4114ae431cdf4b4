// Package registry is the shared context handed to chart components: the
// utility kit, application data, embedded static datasets and geographic
// data.
//
// A Registry is built once with [New] and passed explicitly to whatever
// needs it; there is no package level instance.
//
//	reg := registry.New(logger)
//	data, err := reg.Dataset("topology")
package registry

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/topology"
	"github.com/matzehuels/topochart/pkg/vizutil"
)

//go:embed data
var embedded embed.FS

// DefaultDataset is the embedded topology used by examples.
const DefaultDataset = "topology"

// Registry holds the shared sub-namespaces.
type Registry struct {
	// Utils is the helper kit with its seeded random source.
	Utils *vizutil.Kit

	mu      sync.RWMutex
	logger  *log.Logger
	appData map[string]any
	geoData map[string]any
	heredoc map[string]heredoc
}

// heredoc is a static dataset text and the format it is written in.
type heredoc struct {
	text   []byte
	format topology.Format
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	seed uint64
}

// WithSeed seeds the utility kit.
func WithSeed(seed uint64) Option { return func(o *options) { o.seed = seed } }

// New creates a registry with the embedded datasets loaded. A nil logger
// discards output.
func New(logger *log.Logger, opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Registry{
		Utils:   vizutil.NewKit(o.seed, logger),
		logger:  logger,
		appData: make(map[string]any),
		geoData: make(map[string]any),
		heredoc: make(map[string]heredoc),
	}
	r.loadEmbedded()
	return r
}

func (r *Registry) loadEmbedded() {
	entries, err := fs.ReadDir(embedded, "data")
	if err != nil {
		r.logger.Warn("read embedded datasets", "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		text, err := embedded.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			r.logger.Warn("read embedded dataset", "file", e.Name(), "error", err)
			continue
		}
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		r.heredoc[name] = heredoc{text: text, format: topology.FormatFromPath(e.Name())}
	}
}

// =============================================================================
// Static datasets
// =============================================================================

// AddHeredoc registers dataset text under name, replacing any previous one.
func (r *Registry) AddHeredoc(name string, text []byte, format topology.Format) error {
	if err := errors.ValidateIdentifier("dataset", name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heredoc[name] = heredoc{text: bytes.Clone(text), format: format}
	return nil
}

// Heredoc returns the raw text of a static dataset.
func (r *Registry) Heredoc(name string) ([]byte, topology.Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.heredoc[name]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(h.text), h.format, true
}

// Datasets returns the static dataset names, sorted.
func (r *Registry) Datasets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.heredoc))
}

// Dataset decodes a static dataset. Every call returns a fresh copy, so
// callers may hand it to a chart that mutates positions.
func (r *Registry) Dataset(name string) (*topology.Dataset, error) {
	text, format, ok := r.Heredoc(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownData, "unknown dataset %q (available: %s)",
			name, strings.Join(r.Datasets(), ", "))
	}
	return topology.ReadDataset(bytes.NewReader(text), format)
}

// =============================================================================
// Application and geographic data
// =============================================================================

// SetAppData stores an application value.
func (r *Registry) SetAppData(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appData[key] = v
}

// AppData returns an application value.
func (r *Registry) AppData(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.appData[key]
	return v, ok
}

// SetGeoData stores geographic data, such as a map outline.
func (r *Registry) SetGeoData(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.geoData[key] = v
}

// GeoData returns geographic data.
func (r *Registry) GeoData(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.geoData[key]
	return v, ok
}

// Logger returns the registry logger.
func (r *Registry) Logger() *log.Logger { return r.logger }
