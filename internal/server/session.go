package server

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/store"
	"github.com/matzehuels/topochart/pkg/topology"
)

// hoverRoute is the hover endpoint embedded in served svgs. The chart
// script substitutes {node}.
const hoverRoute = "/charts/{id}/nodes/{node}/hover"

// session is one live chart and the container it draws into.
type session struct {
	id     string
	name   string
	chart  *chart.Chart
	root   *scene.Element
	live   bool
	fit    bool
	unbind func()

	mu        sync.Mutex
	lastHover string
	hovers    int
}

// sessionSpec describes a chart to bring up.
type sessionSpec struct {
	id     string
	name   string
	data   *topology.Dataset
	opts   []chart.Option
	live   bool
	fit    bool
	layout *chart.Layout
}

// open builds the chart, draws data into a fresh container, and either
// restores a saved layout, starts the timer or settles the layout.
func (s *Server) open(spec sessionSpec) *session {
	opts := slices.Clone(s.opts.Chart)
	opts = append(opts, chart.WithLogger(s.logger.With("chart", spec.id)))
	if s.opts.HoverEndpoint {
		opts = append(opts, chart.WithHoverEndpoint(strings.Replace(hoverRoute, "{id}", spec.id, 1)))
	}
	opts = append(opts, spec.opts...)

	sess := &session{
		id:    spec.id,
		name:  spec.name,
		chart: chart.New(opts...),
		root:  scene.New("div"),
		live:  spec.live,
		fit:   spec.fit,
	}
	// EventHover is declared by every chart, so On cannot fail.
	_ = sess.chart.On(chart.EventHover+".server", sess.recordHover)
	sess.chart.Render(sess.root, spec.data)

	switch {
	case spec.layout != nil:
		sess.chart.Restore(*spec.layout)
	case !spec.live:
		sess.chart.Settle()
	}
	if spec.live {
		sess.chart.Start(s.ctx, s.opts.StepInterval)
	}

	if spec.fit {
		sess.unbind = s.resizer.OnResize(func(width, height float64) {
			sess.resize(width, height, nil)
		})
	}
	return sess
}

// add registers sess, replacing and closing any chart with the same id.
func (s *Server) add(sess *session) {
	s.mu.Lock()
	old := s.sessions[sess.id]
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if old != nil {
		old.close()
	}
}

// session returns the live chart for id, reloading it from the store
// when it is not in memory.
func (s *Server) session(ctx context.Context, id string) (*session, error) {
	if err := errors.ValidateIdentifier("chart", id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("restoring chart from store", "id", id, "nodes", len(snap.Data.Nodes))
	layout := snap.Layout
	restored := s.open(sessionSpec{
		id:   id,
		name: snap.Name,
		data: snap.Data,
		opts: []chart.Option{
			chart.WithWidth(layout.Width),
			chart.WithHeight(layout.Height),
			chart.WithMargin(layout.Margin),
		},
		layout: &layout,
	})

	// Another request may have restored it first.
	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		restored.close()
		return existing, nil
	}
	s.sessions[id] = restored
	s.mu.Unlock()
	return restored, nil
}

// remove drops id from memory and from the store.
func (s *Server) remove(ctx context.Context, id string) error {
	if err := errors.ValidateIdentifier("chart", id); err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.close()
	}
	return s.store.Delete(ctx, id)
}

// save writes the current data and layout of sess to the store.
func (s *Server) save(ctx context.Context, sess *session) error {
	data := sess.chart.Snapshot()
	if data == nil {
		data = &topology.Dataset{}
	}
	snap := &store.Snapshot{
		ID:     sess.id,
		Name:   sess.name,
		Data:   data,
		Layout: sess.chart.Layout(),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save chart %s", sess.id)
	}
	return nil
}

// settle runs a static chart to rest. Live charts cool on their own.
func (sess *session) settle() int {
	if sess.chart.Running() {
		return 0
	}
	return sess.chart.Settle()
}

// resize applies a new size and redraws the bound data. A nil margin keeps
// the current one.
func (sess *session) resize(width, height float64, margin *chart.Margin) {
	sess.chart.SetWidth(width).SetHeight(height)
	if margin != nil {
		sess.chart.SetMargin(*margin)
	}
	sess.chart.Render(sess.root, sess.chart.Data())
}

func (sess *session) recordHover(payload any) {
	n, ok := payload.(*topology.Node)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastHover = n.ID
	sess.hovers++
}

func (sess *session) hoverState() (string, int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.lastHover, sess.hovers
}

func (sess *session) close() {
	if sess.unbind != nil {
		sess.unbind()
	}
	sess.chart.Close()
}

// =============================================================================
// Responses
// =============================================================================

// chartView is the JSON shape of a chart.
type chartView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	Live      bool         `json:"live"`
	Running   bool         `json:"running"`
	Fit       bool         `json:"fit,omitempty"`
	LastHover string       `json:"last_hover,omitempty"`
	Hovers    int          `json:"hovers"`
	Layout    chart.Layout `json:"layout"`
	Ticks     int          `json:"ticks,omitempty"`
}

func (sess *session) view() chartView {
	last, n := sess.hoverState()
	return chartView{
		ID:        sess.id,
		Name:      sess.name,
		Live:      sess.live,
		Running:   sess.chart.Running(),
		Fit:       sess.fit,
		LastHover: last,
		Hovers:    n,
		Layout:    sess.chart.Layout(),
	}
}

// summaryView is a stored chart in a listing.
type summaryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Nodes     int       `json:"nodes"`
	Loaded    bool      `json:"loaded"`
	UpdatedAt time.Time `json:"updated_at"`
}
