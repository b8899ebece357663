package flow

import (
	"strings"

	"github.com/matzehuels/pondera/pkg/errors"
)

// Layer is one of the three diagram columns.
type Layer int

const (
	FirstYear     Layer = iota // 1º Bachillerato subjects
	SecondYear                 // 2º Bachillerato subjects that carry a weight
	DegreeProgram              // university degree programs
)

var layerPrefixes = [...]string{"bach1", "bach2", "grado"}

// Prefix returns the key prefix for the layer ("bach1", "bach2", "grado").
func (l Layer) Prefix() string {
	if l < FirstYear || l > DegreeProgram {
		return ""
	}
	return layerPrefixes[l]
}

func (l Layer) String() string {
	switch l {
	case FirstYear:
		return "first-year"
	case SecondYear:
		return "second-year"
	case DegreeProgram:
		return "degree-program"
	}
	return "unknown"
}

// NodeID identifies a node by layer and name. Subjects and programs may
// share a literal name, so the layer is part of the identity.
type NodeID struct {
	Layer Layer
	Name  string
}

// FirstYearSubject returns the NodeID of a first-year subject.
func FirstYearSubject(name string) NodeID { return NodeID{Layer: FirstYear, Name: name} }

// SecondYearSubject returns the NodeID of a second-year subject.
func SecondYearSubject(name string) NodeID { return NodeID{Layer: SecondYear, Name: name} }

// Program returns the NodeID of a degree program.
func Program(name string) NodeID { return NodeID{Layer: DegreeProgram, Name: name} }

// Key returns the string form "prefix:name", unique across layers.
func (id NodeID) Key() string { return id.Layer.Prefix() + ":" + id.Name }

func (id NodeID) String() string { return id.Key() }

// Label returns the display name. Subject identifiers use underscores for
// spaces; program names are shown as written.
func (id NodeID) Label() string {
	if id.Layer == DegreeProgram {
		return id.Name
	}
	return strings.ReplaceAll(id.Name, "_", " ")
}

// ParseNodeID parses a key produced by [NodeID.Key].
func ParseNodeID(key string) (NodeID, error) {
	prefix, name, ok := strings.Cut(key, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return NodeID{}, errors.New(errors.ErrCodeInvalidNode, "invalid node key %q: want prefix:name", key)
	}
	for i, p := range layerPrefixes {
		if p == prefix {
			return NodeID{Layer: Layer(i), Name: name}, nil
		}
	}
	return NodeID{}, errors.New(errors.ErrCodeInvalidNode, "invalid node key %q: unknown layer %q", key, prefix)
}
