package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topochart/pkg/errors"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension; JSON by default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// knownNodeKeys are the node fields decoded into struct fields.
var knownNodeKeys = map[string]bool{
	"id": true, "node_type": true, "label": true, "meta": true,
	"x": true, "y": true, "vx": true, "vy": true, "fx": true, "fy": true,
}

// nodeFields mirrors Node without its custom decoders.
type nodeFields Node

// UnmarshalJSON decodes a node and folds unknown fields into Meta.
func (n *Node) UnmarshalJSON(data []byte) error {
	var f nodeFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node(f)
	n.foldExtra(raw)
	return nil
}

// UnmarshalYAML decodes a node and folds unknown fields into Meta.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var f nodeFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*n = Node(f)
	n.foldExtra(raw)
	return nil
}

func (n *Node) foldExtra(raw map[string]any) {
	for k, v := range raw {
		if knownNodeKeys[k] {
			continue
		}
		if n.Meta == nil {
			n.Meta = make(map[string]any)
		}
		n.Meta[k] = v
	}
}

// =============================================================================
// Reading
// =============================================================================

// ReadDataset decodes a dataset from r.
func ReadDataset(r io.Reader, format Format) (*Dataset, error) {
	var d Dataset
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json dataset")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml dataset")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format %q", format)
	}
	d.compact()
	return &d, nil
}

// ReadDatasetFile reads a dataset file, choosing the decoder by extension.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f, FormatFromPath(path))
}

// UnmarshalDataset decodes JSON bytes.
func UnmarshalDataset(data []byte) (*Dataset, error) {
	return ReadDataset(bytes.NewReader(data), FormatJSON)
}

// compact drops null entries so the rest of the code can assume non-nil.
func (d *Dataset) compact() {
	nodes := d.Nodes[:0]
	for _, n := range d.Nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	d.Nodes = nodes
	links := d.Links[:0]
	for _, l := range d.Links {
		if l != nil {
			links = append(links, l)
		}
	}
	d.Links = links
}

// =============================================================================
// Writing
// =============================================================================

// WriteDataset encodes d to w.
func WriteDataset(w io.Writer, d *Dataset, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format %q", format)
	}
	return nil
}

// WriteDatasetFile writes d to path, encoding by extension.
func WriteDatasetFile(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(f, d, FormatFromPath(path))
}

// MarshalDataset encodes d as indented JSON.
func MarshalDataset(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, d, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
