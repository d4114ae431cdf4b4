package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/cache"
	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/observability"
	"github.com/matzehuels/topochart/pkg/pipeline"
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/store"
)

const fixture = `{
  "nodes": [
    {"id": "r1", "node_type": "ROUTER"},
    {"id": "n1", "node_type": "NETWORK", "label": "frontend"},
    {"id": "p1", "node_type": "PORT"}
  ],
  "links": [
    {"source": "r1", "target": "n1"},
    {"source": "n1", "target": "p1"},
    {"source": "p1", "target": "ghost"}
  ]
}`

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(registry.New(logger), cache.NewMemoryCache(), nil, logger)
	s := New(runner, st, logger, Options{HoverEndpoint: true})
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createChart(t *testing.T, s *Server, body string) chartView {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/charts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[chartView](t, rec)
}

func nodePosition(t *testing.T, l chart.Layout, id string) chart.NodePosition {
	t.Helper()
	for _, n := range l.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not in layout", id)
	return chart.NodePosition{}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Server"); !strings.HasPrefix(got, "topochart/") {
		t.Errorf("Server header = %q", got)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["charts"] != float64(0) {
		t.Errorf("charts = %v, want 0", body["charts"])
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody[errorResponse](t, rec); body.Code != "NOT_FOUND" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestChartLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	v := createChart(t, s, `{"name": "lab", "data": `+fixture+`}`)
	if v.ID == "" || v.Name != "lab" {
		t.Fatalf("view = %+v", v)
	}
	if len(v.Layout.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(v.Layout.Nodes))
	}
	if len(v.Layout.Links) != 2 {
		t.Errorf("links = %d, want 2 (dangling link skipped)", len(v.Layout.Links))
	}
	if v.Running {
		t.Error("static chart should not be running")
	}
	if v.Layout.Width != chart.DefaultWidth || v.Layout.Height != chart.DefaultHeight {
		t.Errorf("size = %vx%v", v.Layout.Width, v.Layout.Height)
	}

	rec := do(t, s, http.MethodGet, "/charts/"+v.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	if got := decodeBody[chartView](t, rec); got.ID != v.ID {
		t.Errorf("get id = %q", got.ID)
	}

	rec = do(t, s, http.MethodGet, "/charts/"+v.ID+"/svg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("svg: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	svg := rec.Body.String()
	for _, want := range []string{chart.ClassChart, "frontend", `data-endpoint="/charts/` + v.ID + `/nodes/{node}/hover"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	rec = do(t, s, http.MethodDelete, "/charts/"+v.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after delete", s.Len())
	}
	rec = do(t, s, http.MethodGet, "/charts/"+v.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d", rec.Code)
	}
}

func TestCreateChartDataset(t *testing.T) {
	s := newTestServer(t, nil)
	want, err := s.registry.Dataset(registry.DefaultDataset)
	if err != nil {
		t.Fatal(err)
	}

	v := createChart(t, s, `{"width": 800, "height": 500, "seed": 7}`)
	if len(v.Layout.Nodes) != len(want.Nodes) {
		t.Errorf("nodes = %d, want %d", len(v.Layout.Nodes), len(want.Nodes))
	}
	if v.Layout.Width != 800 || v.Layout.Height != 500 {
		t.Errorf("size = %vx%v", v.Layout.Width, v.Layout.Height)
	}
}

func TestCreateChartErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative width", `{"width": -1}`, http.StatusBadRequest, "INVALID_DIMENSION"},
		{"unknown dataset", `{"dataset": "nope"}`, http.StatusNotFound, "UNKNOWN_DATASET"},
		{"strict duplicate", `{"strict": true, "data": {"nodes": [{"id": "a"}, {"id": "a"}], "links": []}}`, http.StatusBadRequest, "INVALID_DATASET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/charts", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if body := decodeBody[errorResponse](t, rec); string(body.Code) != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after failed creates", s.Len())
	}
}

func TestRestoreFromStore(t *testing.T) {
	st := store.NewMemory()
	first := newTestServer(t, st)
	v := createChart(t, first, `{"name": "persisted", "data": `+fixture+`}`)

	second := newTestServer(t, st)
	rec := do(t, second, http.MethodGet, "/charts/"+v.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[chartView](t, rec)
	if got.Name != "persisted" {
		t.Errorf("name = %q", got.Name)
	}
	for _, want := range v.Layout.Nodes {
		p := nodePosition(t, got.Layout, want.ID)
		if p.X != want.X || p.Y != want.Y {
			t.Errorf("%s at (%v,%v), want (%v,%v)", want.ID, p.X, p.Y, want.X, want.Y)
		}
	}
	if second.Len() != 1 {
		t.Errorf("Len = %d, want 1 after restore", second.Len())
	}
}

func TestListCharts(t *testing.T) {
	st := store.NewMemory()
	s := newTestServer(t, st)
	a := createChart(t, s, `{"name": "a", "data": `+fixture+`}`)
	createChart(t, s, `{"name": "b", "data": `+fixture+`}`)

	// A second server lists both snapshots but holds only the one it fetched.
	other := newTestServer(t, st)
	do(t, other, http.MethodGet, "/charts/"+a.ID, "")

	rec := do(t, other, http.MethodGet, "/charts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[struct {
		Charts []summaryView `json:"charts"`
	}](t, rec)
	if len(body.Charts) != 2 {
		t.Fatalf("charts = %d, want 2", len(body.Charts))
	}
	for _, c := range body.Charts {
		if c.Nodes != 3 {
			t.Errorf("%s nodes = %d", c.Name, c.Nodes)
		}
		if wantLoaded := c.ID == a.ID; c.Loaded != wantLoaded {
			t.Errorf("%s loaded = %v, want %v", c.Name, c.Loaded, wantLoaded)
		}
	}
}

func TestUpdateData(t *testing.T) {
	s := newTestServer(t, nil)
	v := createChart(t, s, `{"data": `+fixture+`}`)
	before := nodePosition(t, v.Layout, "r1")

	rec := do(t, s, http.MethodPut, "/charts/"+v.ID+"/data",
		`{"nodes": [{"id": "r1", "node_type": "ROUTER"}, {"id": "n1", "node_type": "NETWORK"}], "links": [{"source": "r1", "target": "n1"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[chartView](t, rec)
	if len(got.Layout.Nodes) != 2 || len(got.Layout.Links) != 1 {
		t.Fatalf("layout = %d nodes, %d links", len(got.Layout.Nodes), len(got.Layout.Links))
	}
	if got.Ticks == 0 {
		t.Error("changed node set should reheat and settle")
	}
	after := nodePosition(t, got.Layout, "r1")
	if after.X == 0 && after.Y == 0 && (before.X != 0 || before.Y != 0) {
		t.Error("surviving node lost its position")
	}

	rec = do(t, s, http.MethodPut, "/charts/"+v.ID+"/data", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: status %d", rec.Code)
	}
	rec = do(t, s, http.MethodPut, "/charts/"+v.ID+"/data?strict=true", `{"nodes": [], "links": [{"source": "x", "target": "y"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("strict dangling: status %d", rec.Code)
	}
}

func TestResize(t *testing.T) {
	s := newTestServer(t, nil)
	v := createChart(t, s, `{"data": `+fixture+`}`)

	rec := do(t, s, http.MethodPut, "/charts/"+v.ID+"/size", `{"width": 900, "height": 700, "margin": {"top": 10, "right": 10, "bottom": 10, "left": 10}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[chartView](t, rec)
	if got.Layout.Width != 900 || got.Layout.Height != 700 {
		t.Errorf("size = %vx%v", got.Layout.Width, got.Layout.Height)
	}
	if got.Layout.Margin.Left != 10 {
		t.Errorf("margin = %+v", got.Layout.Margin)
	}

	rec = do(t, s, http.MethodPut, "/charts/"+v.ID+"/size", `{"width": 0, "height": 700}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero width: status %d", rec.Code)
	}
}

func TestViewport(t *testing.T) {
	s := newTestServer(t, nil)
	fitted := createChart(t, s, `{"fit": true, "data": `+fixture+`}`)
	fixed := createChart(t, s, `{"data": `+fixture+`}`)

	rec := do(t, s, http.MethodPut, "/viewport", `{"width": 1024, "height": 768}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody[map[string]int](t, rec); body["resized"] != 1 {
		t.Errorf("resized = %d, want 1", body["resized"])
	}

	got := decodeBody[chartView](t, do(t, s, http.MethodGet, "/charts/"+fitted.ID, ""))
	if got.Layout.Width != 1024 || got.Layout.Height != 768 {
		t.Errorf("fitted size = %vx%v", got.Layout.Width, got.Layout.Height)
	}
	got = decodeBody[chartView](t, do(t, s, http.MethodGet, "/charts/"+fixed.ID, ""))
	if got.Layout.Width != chart.DefaultWidth {
		t.Errorf("fixed width = %v", got.Layout.Width)
	}

	// Deleting the fitted chart unbinds it from the viewport.
	do(t, s, http.MethodDelete, "/charts/"+fitted.ID, "")
	if n := s.resizer.Len(); n != 0 {
		t.Errorf("resize handlers = %d after delete", n)
	}
}

func TestDrag(t *testing.T) {
	s := newTestServer(t, nil)
	v := createChart(t, s, `{"data": `+fixture+`}`)
	base := "/charts/" + v.ID + "/nodes/"

	rec := do(t, s, http.MethodPost, base+"r1/drag", `{"phase": "start", "x": 10, "y": 20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status %d: %s", rec.Code, rec.Body.String())
	}
	p := nodePosition(t, decodeBody[chartView](t, rec).Layout, "r1")
	if !p.Pinned || p.X != 10 || p.Y != 20 {
		t.Errorf("after start r1 = %+v", p)
	}

	rec = do(t, s, http.MethodPost, base+"r1/drag", `{"phase": "move", "x": 30, "y": 40}`)
	p = nodePosition(t, decodeBody[chartView](t, rec).Layout, "r1")
	if p.X != 30 || p.Y != 40 {
		t.Errorf("after move r1 = %+v", p)
	}

	rec = do(t, s, http.MethodPost, base+"r1/drag", `{"phase": "end"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: status %d", rec.Code)
	}
	if p := nodePosition(t, decodeBody[chartView](t, rec).Layout, "r1"); p.Pinned {
		t.Error("r1 still pinned after end")
	}

	tests := []struct {
		name   string
		node   string
		body   string
		status int
	}{
		{"unknown node", "ghost", `{"phase": "start"}`, http.StatusNotFound},
		{"unknown phase", "r1", `{"phase": "fling"}`, http.StatusBadRequest},
		{"move without start", "n1", `{"phase": "move", "x": 1, "y": 1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, base+tt.node+"/drag", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHover(t *testing.T) {
	s := newTestServer(t, nil)
	v := createChart(t, s, `{"data": `+fixture+`}`)

	for range 2 {
		rec := do(t, s, http.MethodPost, "/charts/"+v.ID+"/nodes/n1/hover", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	got := decodeBody[chartView](t, do(t, s, http.MethodGet, "/charts/"+v.ID, ""))
	if got.LastHover != "n1" || got.Hovers != 2 {
		t.Errorf("hover state = %q/%d", got.LastHover, got.Hovers)
	}

	rec := do(t, s, http.MethodPost, "/charts/"+v.ID+"/nodes/ghost/hover", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown node: status %d", rec.Code)
	}
}

func TestReheat(t *testing.T) {
	s := newTestServer(t, nil)
	v := createChart(t, s, `{"data": `+fixture+`}`)

	rec := do(t, s, http.MethodPost, "/charts/"+v.ID+"/reheat", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[chartView](t, rec); got.Ticks == 0 {
		t.Error("reheat should settle again")
	}
}

func TestLiveChart(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(nil, nil, logger, Options{StepInterval: time.Millisecond})

	v := createChart(t, s, `{"live": true, "data": `+fixture+`}`)
	if !v.Live || !v.Running {
		t.Fatalf("live chart view = live %v running %v", v.Live, v.Running)
	}
	sess, err := s.session(context.Background(), v.ID)
	if err != nil {
		t.Fatal(err)
	}

	s.Close()
	if sess.chart.Running() {
		t.Error("chart still running after Close")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after Close", s.Len())
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/render?format=json&seed=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q", got)
	}
	l, err := pipeline.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if l.Engine != pipeline.EngineForce || l.Seed != 3 {
		t.Errorf("layout engine=%q seed=%d", l.Engine, l.Seed)
	}

	rec = do(t, s, http.MethodGet, "/render?format=json&seed=3", "")
	if got := rec.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q", got)
	}

	rec = do(t, s, http.MethodPost, "/render", `{"data": `+fixture+`, "formats": ["svg"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("post: status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("post render is not svg")
	}

	tests := []struct {
		query  string
		status int
	}{
		{"format=gif", http.StatusBadRequest},
		{"engine=circo", http.StatusBadRequest},
		{"width=wide", http.StatusBadRequest},
		{"dataset=nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if rec := do(t, s, http.MethodGet, "/render?"+tt.query, ""); rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestDatasets(t *testing.T) {
	s := newTestServer(t, nil)

	body := decodeBody[map[string][]string](t, do(t, s, http.MethodGet, "/datasets", ""))
	found := false
	for _, name := range body["datasets"] {
		found = found || name == registry.DefaultDataset
	}
	if !found {
		t.Errorf("datasets = %v", body["datasets"])
	}

	rec := do(t, s, http.MethodGet, "/datasets/"+registry.DefaultDataset+"?format=yaml", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/yaml" {
		t.Errorf("yaml: status %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := do(t, s, http.MethodGet, "/datasets/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown: status %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/datasets/random", `{"routers": 1, "networks": 2, "ports": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("random: status %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeBody[struct {
		Nodes []json.RawMessage `json:"nodes"`
	}](t, rec)
	if len(data.Nodes) != 6 {
		t.Errorf("random nodes = %d, want 6", len(data.Nodes))
	}
	if rec := do(t, s, http.MethodPost, "/datasets/random", `{"routers": -1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative: status %d", rec.Code)
	}
}

type routeRecorder struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (r *routeRecorder) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.status = append(r.status, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &routeRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/charts/0b7e1d1c-missing", "")
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodGet, "/nope", "")

	want := []struct {
		route  string
		status int
	}{
		{"/charts/{id}", http.StatusNotFound},
		{"/healthz", http.StatusOK},
		{unmatchedRoute, http.StatusNotFound},
	}
	if len(rec.routes) != len(want) {
		t.Fatalf("routes = %v", rec.routes)
	}
	for i, w := range want {
		if rec.routes[i] != w.route || rec.status[i] != w.status {
			t.Errorf("event %d = %s %d, want %s %d", i, rec.routes[i], rec.status[i], w.route, w.status)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeChartNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeStorage, "x"), http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRecoverer(t *testing.T) {
	s := newTestServer(t, nil)

	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/charts/x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody[errorResponse](t, rec); body.Code != errors.ErrCodeInternal || body.Error == "" {
		t.Errorf("body = %+v", body)
	}

	abort := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("ErrAbortHandler was swallowed")
}
