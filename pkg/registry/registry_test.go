package registry

import (
	"slices"
	"testing"

	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/topology"
)

func TestEmbeddedDatasets(t *testing.T) {
	r := New(nil)
	names := r.Datasets()
	for _, want := range []string{"routerport", DefaultDataset} {
		if !slices.Contains(names, want) {
			t.Errorf("Datasets() = %v, missing %q", names, want)
		}
	}

	d, err := r.Dataset(DefaultDataset)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("embedded topology is invalid: %v", err)
	}
	for _, typ := range topology.KnownNodeTypes {
		if d.CountByType()[typ] == 0 {
			t.Errorf("embedded topology has no %s node", typ)
		}
	}

	rp, err := r.Dataset("routerport")
	if err != nil {
		t.Fatal(err)
	}
	if len(rp.Nodes) != 2 || len(rp.Links) != 1 {
		t.Errorf("routerport = %d nodes, %d links", len(rp.Nodes), len(rp.Links))
	}
}

func TestDatasetReturnsCopies(t *testing.T) {
	r := New(nil)
	a, _ := r.Dataset("routerport")
	a.Nodes[0].X = 100
	b, _ := r.Dataset("routerport")
	if b.Nodes[0].X != 0 {
		t.Error("Dataset should return an independent copy")
	}
}

func TestUnknownDataset(t *testing.T) {
	_, err := New(nil).Dataset("nope")
	if !errors.Is(err, errors.ErrCodeUnknownData) {
		t.Errorf("err = %v, want UNKNOWN_DATASET", err)
	}
}

func TestAddHeredoc(t *testing.T) {
	r := New(nil)
	text := []byte(`{"nodes":[{"id":"x","node_type":"NC"}],"links":[]}`)
	if err := r.AddHeredoc("custom", text, topology.FormatJSON); err != nil {
		t.Fatal(err)
	}
	d, err := r.Dataset("custom")
	if err != nil {
		t.Fatal(err)
	}
	if d.Nodes[0].Type != topology.NodeTypeNC {
		t.Errorf("type = %q", d.Nodes[0].Type)
	}
	if err := r.AddHeredoc("", text, topology.FormatJSON); err == nil {
		t.Error("empty name should be rejected")
	}
}

func TestAppAndGeoData(t *testing.T) {
	r := New(nil)
	if _, ok := r.AppData("x"); ok {
		t.Error("empty registry should have no app data")
	}
	r.SetAppData("x", 1)
	r.SetGeoData("japan", "outline")
	if v, _ := r.AppData("x"); v != 1 {
		t.Errorf("AppData(x) = %v", v)
	}
	if v, _ := r.GeoData("japan"); v != "outline" {
		t.Errorf("GeoData(japan) = %v", v)
	}
}

func TestSeededUtils(t *testing.T) {
	a := New(nil, WithSeed(3)).Utils.RndNumbers(0, 0)
	b := New(nil, WithSeed(3)).Utils.RndNumbers(0, 0)
	if !slices.Equal(a, b) {
		t.Error("same seed should give the same numbers")
	}
}
