// Package cache provides byte-level caching for layouts and rendered artifacts.
//
// # Overview
//
// The rendering pipeline caches two kinds of values:
//
//   - Layouts: settled node positions (or Graphviz DOT) keyed by the dataset
//     hash and the layout options that influence positions
//   - Artifacts: rendered SVG/PNG/PDF/JSON/DOT bytes keyed by the layout hash
//     and output format
//
// Keys are produced by a [Keyer] so that callers never build cache keys by
// hand. Values are opaque bytes; the pipeline decides how to encode them.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [MemoryCache]: process-local map with expiry, used by tests and the
//     server when no Redis is configured
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: never stores anything (--no-cache)
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get returns the cached value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from the dataset
	// identified by dataHash.
	LayoutKey(dataHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for an artifact rendered from the layout
	// identified by layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options that change computed node positions.
type LayoutKeyOpts struct {
	Engine string     `json:"engine"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin [4]float64 `json:"margin"`
	Seed   uint64     `json:"seed"`
}

// ArtifactKeyOpts holds the options that change rendered output.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// Default time-to-live values.
const (
	// TTLLayout is how long settled layouts are kept.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered artifacts are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// DefaultKeyer produces unprefixed keys of the form "stage:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the dataset hash together with the layout options.
func (DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dataHash, opts)
}

// ArtifactKey hashes the layout hash together with the artifact options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
