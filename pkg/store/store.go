// Package store persists chart snapshots: a dataset together with the
// settled positions of its nodes.
//
// Snapshots let a server restart (or a second instance) bring a chart back
// exactly where users left it, pins included, without re-running the layout.
//
// # Backends
//
//   - [Memory]: process-local, used by tests and `serve --store memory`
//   - [SQLite]: single file via the pure-Go modernc.org/sqlite driver; the
//     default for `serve`
//   - [Mongo]: shared MongoDB collection for multi-instance deployments
//
// All backends are safe for concurrent use. [Open] picks one by name.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Snapshot is one persisted chart.
type Snapshot struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name,omitempty" bson:"name,omitempty"`
	Data      *topology.Dataset `json:"data" bson:"data"`
	Layout    chart.Layout      `json:"layout" bson:"layout"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save inserts or replaces the snapshot with s.ID and stamps UpdatedAt.
	Save(ctx context.Context, s *Snapshot) error

	// Load returns the snapshot or an ErrCodeChartNotFound error.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns summaries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Open creates the backend named by backend. dsn is a file path for
// sqlite and a connection URI (with the database as path) for mongo; it is
// ignored for memory.
func Open(ctx context.Context, backend, dsn string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, dsn)
	case BackendMongo:
		return OpenMongo(ctx, dsn)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want memory, sqlite or mongo)", backend)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeChartNotFound, "snapshot %q not found", id)
}

func checkSnapshot(s *Snapshot) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot is nil")
	}
	return errors.ValidateIdentifier("snapshot", s.ID)
}

func summarize(s *Snapshot) Summary {
	n := 0
	if s.Data != nil {
		n = len(s.Data.Nodes)
	}
	return Summary{ID: s.ID, Name: s.Name, Nodes: n, UpdatedAt: s.UpdatedAt}
}

var now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
