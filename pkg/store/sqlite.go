package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/topochart/pkg/errors"
)

// SQLite stores snapshots in one table of a SQLite database file.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	nodes      INTEGER NOT NULL DEFAULT 0,
	data       BLOB NOT NULL,
	layout     BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_updated ON snapshots(updated_at);
`

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "sqlite store needs a database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, snap *Snapshot) error {
	if err := checkSnapshot(snap); err != nil {
		return err
	}
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	layout, err := json.Marshal(snap.Layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	snap.UpdatedAt = now()
	sum := summarize(snap)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, nodes, data, layout, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			nodes = excluded.nodes,
			data = excluded.data,
			layout = excluded.layout,
			updated_at = excluded.updated_at
	`, sum.ID, sum.Name, sum.Nodes, data, layout, sum.UpdatedAt.UnixMilli())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save snapshot %q", snap.ID)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, id string) (*Snapshot, error) {
	snap := &Snapshot{ID: id}
	var (
		data, layout []byte
		updated      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, data, layout, updated_at FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.Name, &data, &layout, &updated)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load snapshot %q", id)
	}
	if err := json.Unmarshal(data, &snap.Data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode dataset of %q", id)
	}
	if err := json.Unmarshal(layout, &snap.Layout); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode layout of %q", id)
	}
	snap.UpdatedAt = time.UnixMilli(updated).UTC()
	return snap, nil
}

func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, nodes, updated_at FROM snapshots ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list snapshots")
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Nodes, &updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan snapshot")
		}
		sum.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %q", id)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

var _ Store = (*SQLite)(nil)
