package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Memory keeps snapshots in a map. Snapshots are cloned on the way in and
// out so callers never share state with the store.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]*Snapshot)}
}

func (m *Memory) Save(ctx context.Context, s *Snapshot) error {
	if err := checkSnapshot(s); err != nil {
		return err
	}
	s.UpdatedAt = now()
	c := cloneSnapshot(s)

	m.mu.Lock()
	m.snaps[s.ID] = c
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	s, ok := m.snaps[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return cloneSnapshot(s), nil
}

func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, summarize(s))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.snaps, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

func cloneSnapshot(s *Snapshot) *Snapshot {
	c := *s
	c.Data = s.Data.Clone()
	c.Layout.Nodes = slices.Clone(s.Layout.Nodes)
	c.Layout.Links = slices.Clone(s.Layout.Links)
	return &c
}

var _ Store = (*Memory)(nil)
