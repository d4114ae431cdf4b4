package topology

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/topochart/pkg/errors"
)

const sampleJSON = `{
  "nodes": [
    {"id": "a", "node_type": "ROUTER", "status": "ACTIVE"},
    {"id": "b", "node_type": "PORT", "label": "port-b", "x": 5, "y": 7}
  ],
  "links": [{"source": "a", "target": "b"}]
}`

const sampleYAML = `nodes:
  - id: a
    node_type: ROUTER
    status: ACTIVE
  - id: b
    node_type: PORT
    label: port-b
    x: 5
    y: 7
links:
  - source: a
    target: b
`

func TestReadDataset(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, sampleJSON},
		{"yaml", FormatYAML, sampleYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ReadDataset(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadDataset: %v", err)
			}
			if len(d.Nodes) != 2 || len(d.Links) != 1 {
				t.Fatalf("got %d nodes, %d links", len(d.Nodes), len(d.Links))
			}
			a, b := d.Nodes[0], d.Nodes[1]
			if a.Type != NodeTypeRouter || b.Type != NodeTypePort {
				t.Errorf("types = %q, %q", a.Type, b.Type)
			}
			if a.Meta["status"] != "ACTIVE" {
				t.Errorf("unknown field not kept in Meta: %v", a.Meta)
			}
			if _, ok := b.Meta["label"]; ok {
				t.Error("known field leaked into Meta")
			}
			if b.Label != "port-b" || b.X != 5 || b.Y != 7 {
				t.Errorf("b = %+v", b)
			}
			if d.Links[0].Source != "a" || d.Links[0].Target != "b" {
				t.Errorf("link = %+v", d.Links[0])
			}
		})
	}
}

func TestReadDatasetErrors(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("{"), FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("truncated json: err = %v, want INVALID_FORMAT", err)
	}
	_, err = ReadDataset(strings.NewReader(""), "toml")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format: err = %v, want INVALID_FORMAT", err)
	}
}

func TestReadDatasetDropsNulls(t *testing.T) {
	d, err := UnmarshalDataset([]byte(`{"nodes":[null,{"id":"a"}],"links":[null]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nodes) != 1 || len(d.Links) != 0 {
		t.Errorf("got %d nodes, %d links", len(d.Nodes), len(d.Links))
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"topo.json": FormatJSON,
		"topo.yaml": FormatYAML,
		"TOPO.YML":  FormatYAML,
		"topo":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	d, err := UnmarshalDataset([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		if err := WriteDatasetFile(d, path); err != nil {
			t.Fatalf("WriteDatasetFile(%s): %v", name, err)
		}
		got, err := ReadDatasetFile(path)
		if err != nil {
			t.Fatalf("ReadDatasetFile(%s): %v", name, err)
		}
		if len(got.Nodes) != 2 || got.Nodes[0].Meta["status"] != "ACTIVE" {
			t.Errorf("%s: nodes = %+v", name, got.Nodes)
		}
	}
}

func TestReadDatasetFileMissing(t *testing.T) {
	_, err := ReadDatasetFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalDataset(t *testing.T) {
	d := &Dataset{Nodes: []*Node{{ID: "a", Type: NodeTypeNC}}}
	data, err := MarshalDataset(d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"node_type": "NC"`)) {
		t.Errorf("MarshalDataset = %s", data)
	}
}
