package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pondera/pkg/dag"
	"github.com/matzehuels/pondera/pkg/errors"
)

// Encoding is a serialization format for graphs.
type Encoding string

const (
	JSON Encoding = "json"
	YAML Encoding = "yaml"
)

// ParseEncoding parses "json", "yaml" or "yml".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported graph encoding %q (want json or yaml)", s)
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph encodes a DAG. Nodes and edges keep insertion order.
func MarshalGraph(g *dag.DAG, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph encodes a DAG to w.
func WriteGraph(g *dag.DAG, w io.Writer, enc Encoding) error {
	out := FromDAG(g)
	switch enc {
	case YAML:
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		if err := ye.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return ye.Close()
	default:
		je := json.NewEncoder(w)
		je.SetIndent("", "  ")
		if err := je.Encode(out); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// WriteGraphFile writes a DAG to path, choosing the encoding from the
// file extension (.yaml/.yml, otherwise JSON).
func WriteGraphFile(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f, encodingFor(path))
}

// ReadGraph decodes a graph and returns the validated DAG.
func ReadGraph(r io.Reader, enc Encoding) (*dag.DAG, error) {
	var data Graph
	switch enc {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return ToDAG(data)
}

// ReadGraphFile reads a graph file, choosing the encoding by extension.
func ReadGraphFile(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, encodingFor(path))
}

func encodingFor(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}
