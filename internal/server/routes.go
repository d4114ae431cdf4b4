package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/topochart/pkg/buildinfo"
	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/topology"
	"github.com/matzehuels/topochart/pkg/vizutil"
)

// maxRandomNodes bounds generated datasets.
const maxRandomNodes = 5000

// Drag phases accepted by the drag endpoint.
const (
	dragStart = "start"
	dragMove  = "move"
	dragEnd   = "end"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, serverHeader, s.observe, s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Get("/datasets", s.handleListDatasets)
	r.Get("/datasets/{name}", s.handleGetDataset)
	r.Post("/datasets/random", s.handleRandomDataset)

	r.Get("/render", s.handleRender)
	r.Post("/render", s.handleRenderOptions)

	r.Put("/viewport", s.handleViewport)

	r.Get("/charts", s.handleListCharts)
	r.Post("/charts", s.handleCreateChart)
	r.Get("/charts/{id}", s.handleGetChart)
	r.Delete("/charts/{id}", s.handleDeleteChart)
	r.Get("/charts/{id}/svg", s.handleChartSVG)
	r.Put("/charts/{id}/data", s.handleChartData)
	r.Put("/charts/{id}/size", s.handleChartSize)
	r.Post("/charts/{id}/reheat", s.handleChartReheat)
	r.Post("/charts/{id}/nodes/{node}/drag", s.handleDrag)
	r.Post("/charts/{id}/nodes/{node}/hover", s.handleHover)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// =============================================================================
// Health and datasets
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"build":     buildinfo.Current(),
		"charts":    s.Len(),
		"converter": render.Available(),
	}, http.StatusOK)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"datasets": s.registry.Datasets()}, http.StatusOK)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	data, err := s.registry.Dataset(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDataset(w, r, data)
}

// randomRequest sizes a generated topology.
type randomRequest struct {
	Routers    int `json:"routers"`
	Networks   int `json:"networks"`
	Ports      int `json:"ports"`
	Connectors int `json:"connectors"`
}

func (s *Server) handleRandomDataset(w http.ResponseWriter, r *http.Request) {
	req := randomRequest{Routers: 2, Networks: 4, Ports: 8, Connectors: 2}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	total := req.Routers + req.Networks + req.Ports + 2*req.Connectors
	if req.Routers < 0 || req.Networks < 0 || req.Ports < 0 || req.Connectors < 0 || total > maxRandomNodes {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "resource counts must be non-negative and total at most %d", maxRandomNodes))
		return
	}

	data, err := s.registry.Utils.RandomTopology(vizutil.TopologyOptions{
		Routers:    req.Routers,
		Networks:   req.Networks,
		Ports:      req.Ports,
		Connectors: req.Connectors,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDataset(w, r, data)
}

// writeDataset encodes data as JSON, or YAML with ?format=yaml.
func (s *Server) writeDataset(w http.ResponseWriter, r *http.Request, data *topology.Dataset) {
	format := topology.FormatJSON
	contentType := "application/json"
	if r.URL.Query().Get("format") == string(topology.FormatYAML) {
		format = topology.FormatYAML
		contentType = "application/yaml"
	}

	var buf bytes.Buffer
	if err := topology.WriteDataset(&buf, data, format); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Static rendering
// =============================================================================

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, opts)
}

func (s *Server) handleRenderOptions(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decode(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(opts.Formats) > 1 {
		opts.Formats = opts.Formats[:1]
	}
	s.render(w, r, opts)
}

// render runs the pipeline for a single format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := render.FormatSVG
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}

	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Dataset-Hash", result.DataHash)
	_, _ = w.Write(result.Artifacts[format])
}

// renderOptions reads pipeline options from query parameters.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Dataset: q.Get("dataset"),
		Engine:  q.Get("engine"),
	}

	formats, err := render.ParseFormats(q.Get("format"))
	if err != nil {
		return opts, err
	}
	opts.Formats = formats[:1]

	if opts.Width, err = queryFloat(r, "width"); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(r, "height"); err != nil {
		return opts, err
	}
	if opts.Scale, err = queryFloat(r, "scale"); err != nil {
		return opts, err
	}
	if opts.Seed, err = queryUint(r, "seed"); err != nil {
		return opts, err
	}
	if opts.Strict, err = queryBool(r, "strict"); err != nil {
		return opts, err
	}
	if opts.Refresh, err = queryBool(r, "refresh"); err != nil {
		return opts, err
	}
	if opts.Detailed, err = queryBool(r, "detailed"); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Live charts
// =============================================================================

// createRequest describes a new chart. Data wins over Dataset; with
// neither the default embedded dataset is drawn.
type createRequest struct {
	Name    string            `json:"name,omitempty"`
	Dataset string            `json:"dataset,omitempty"`
	Data    *topology.Dataset `json:"data,omitempty"`
	Strict  bool              `json:"strict,omitempty"`
	Width   float64           `json:"width,omitempty"`
	Height  float64           `json:"height,omitempty"`
	Margin  *chart.Margin     `json:"margin,omitempty"`
	Seed    *uint64           `json:"seed,omitempty"`
	Live    bool              `json:"live,omitempty"` // step on a timer instead of settling
	Fit     bool              `json:"fit,omitempty"`  // follow PUT /viewport
}

func (req createRequest) chartOptions() ([]chart.Option, error) {
	var opts []chart.Option
	if req.Width != 0 {
		if err := errors.ValidateDimension("width", req.Width); err != nil {
			return nil, err
		}
		opts = append(opts, chart.WithWidth(req.Width))
	}
	if req.Height != 0 {
		if err := errors.ValidateDimension("height", req.Height); err != nil {
			return nil, err
		}
		opts = append(opts, chart.WithHeight(req.Height))
	}
	if req.Margin != nil {
		opts = append(opts, chart.WithMargin(*req.Margin))
	}
	if req.Seed != nil {
		opts = append(opts, chart.WithSeed(*req.Seed))
	}
	return opts, nil
}

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := req.chartOptions()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := s.runner.Load(r.Context(), pipeline.Options{Dataset: req.Dataset, Data: req.Data, Strict: req.Strict})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess := s.open(sessionSpec{
		id:   s.newID(),
		name: req.Name,
		data: data,
		opts: opts,
		live: req.Live,
		fit:  req.Fit,
	})
	s.add(sess)
	if err := s.save(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("chart created", "id", sess.id, "nodes", len(data.Nodes), "links", len(data.Links), "live", req.Live)

	w.Header().Set("Location", "/charts/"+sess.id)
	writeJSON(w, sess.view(), http.StatusCreated)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeStorage, err, "list charts"))
		return
	}

	s.mu.RLock()
	out := make([]summaryView, 0, len(summaries))
	for _, sum := range summaries {
		_, loaded := s.sessions[sum.ID]
		out = append(out, summaryView{
			ID:        sum.ID,
			Name:      sum.Name,
			Nodes:     sum.Nodes,
			Loaded:    loaded,
			UpdatedAt: sum.UpdatedAt,
		})
	}
	s.mu.RUnlock()

	writeJSON(w, map[string]any{"charts": out}, http.StatusOK)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, sess.view(), http.StatusOK)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := sess.chart.WriteSVG(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatSVG))
	_, _ = w.Write(buf.Bytes())
}

// handleChartData rebinds the chart to a new dataset. Nodes that survive
// keep their positions; the layout reheats only when the node set changed.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := topology.ReadDataset(http.MaxBytesReader(w, r.Body, maxBodyBytes), topology.FormatJSON)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	strict, err := queryBool(r, "strict")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if strict {
		if err := data.Validate(); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	sess.chart.Render(sess.root, data)
	ticks := sess.settle()
	s.respondSaved(w, r, sess, ticks)
}

// sizeRequest resizes a chart. A missing margin keeps the current one.
type sizeRequest struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Margin *chart.Margin `json:"margin,omitempty"`
}

func (s *Server) handleChartSize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req sizeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateSize(req.Width, req.Height); err != nil {
		s.fail(w, r, err)
		return
	}

	sess.resize(req.Width, req.Height, req.Margin)
	ticks := sess.settle()
	s.respondSaved(w, r, sess, ticks)
}

func (s *Server) handleChartReheat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.chart.Reheat()
	ticks := sess.settle()
	s.respondSaved(w, r, sess, ticks)
}

// handleViewport broadcasts a viewport size to every chart created with
// fit set.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateSize(req.Width, req.Height); err != nil {
		s.fail(w, r, err)
		return
	}

	s.resizer.Notify(req.Width, req.Height)

	s.mu.RLock()
	var fitted []*session
	for _, sess := range s.sessions {
		if sess.fit {
			fitted = append(fitted, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range fitted {
		sess.settle()
		if err := s.save(r.Context(), sess); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeJSON(w, map[string]any{"resized": len(fitted)}, http.StatusOK)
}

// dragRequest is one pointer event of a node drag, in content coordinates.
type dragRequest struct {
	Phase string  `json:"phase"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// handleDrag pins, moves or releases a node. Static charts take one
// simulation step per pointer event and settle on release.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	node := chi.URLParam(r, "node")
	var req dragRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, ok := sess.chart.Node(node); !ok {
		s.fail(w, r, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", node))
		return
	}

	var ok bool
	switch req.Phase {
	case dragStart:
		ok = sess.chart.DragStart(node, req.X, req.Y)
	case dragMove:
		ok = sess.chart.Drag(node, req.X, req.Y)
	case dragEnd:
		ok = sess.chart.DragEnd(node)
	default:
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown drag phase %q (want start, move or end)", req.Phase))
		return
	}
	if !ok {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "node %q is not being dragged", node))
		return
	}

	if req.Phase != dragEnd {
		if !sess.chart.Running() {
			sess.chart.Step()
		}
		writeJSON(w, sess.view(), http.StatusOK)
		return
	}
	ticks := sess.settle()
	s.respondSaved(w, r, sess, ticks)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	node := chi.URLParam(r, "node")
	if !sess.chart.Hover(node) {
		s.fail(w, r, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", node))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondSaved persists sess and writes its view.
func (s *Server) respondSaved(w http.ResponseWriter, r *http.Request, sess *session, ticks int) {
	if err := s.save(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	v := sess.view()
	v.Ticks = ticks
	writeJSON(w, v, http.StatusOK)
}

func validateSize(width, height float64) error {
	if err := errors.ValidateDimension("width", width); err != nil {
		return err
	}
	return errors.ValidateDimension("height", height)
}
