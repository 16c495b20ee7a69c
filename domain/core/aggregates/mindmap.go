package aggregates

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// MindMapNode is a source document or an extracted concept
type MindMapNode struct {
	ID    string
	Label string
	Type  valueobjects.NodeType
}

// MindMapEdge connects two nodes, optionally naming the relationship
type MindMapEdge struct {
	ID    string
	From  string
	To    string
	Label string
}

// MindMap is a node/edge graph describing a project's content.
// It is always replaced wholesale, never patched.
type MindMap struct {
	nodes       []MindMapNode
	edges       []MindMapEdge
	nodeIndex   map[string]int
	edgeIndex   map[string]int
	generatedAt time.Time
}

// NewMindMap creates an empty map
func NewMindMap() *MindMap {
	return &MindMap{
		nodeIndex:   make(map[string]int),
		edgeIndex:   make(map[string]int),
		generatedAt: time.Now(),
	}
}

// BuildMindMap assembles a map from generated nodes and edges and checks it.
// Source nodes must name one of sourceIDs; a nil set skips that check.
func BuildMindMap(nodes []MindMapNode, edges []MindMapEdge, sourceIDs map[string]bool) (*MindMap, error) {
	m := NewMindMap()
	for _, n := range nodes {
		if err := m.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := m.Connect(e); err != nil {
			return nil, err
		}
	}
	if err := m.Validate(sourceIDs); err != nil {
		return nil, err
	}
	return m, nil
}

// AddNode adds a node with a unique id
func (m *MindMap) AddNode(n MindMapNode) error {
	if strings.TrimSpace(n.ID) == "" {
		return contractViolation("mind map node without id")
	}
	if n.Type != valueobjects.NodeTypeSource && n.Type != valueobjects.NodeTypeConcept {
		return contractViolation(fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type))
	}
	if _, exists := m.nodeIndex[n.ID]; exists {
		return contractViolation(fmt.Sprintf("duplicate node id %q", n.ID))
	}
	m.nodeIndex[n.ID] = len(m.nodes)
	m.nodes = append(m.nodes, n)
	return nil
}

// Connect adds an edge between two existing nodes
func (m *MindMap) Connect(e MindMapEdge) error {
	if strings.TrimSpace(e.ID) == "" {
		return contractViolation("mind map edge without id")
	}
	if _, exists := m.edgeIndex[e.ID]; exists {
		return contractViolation(fmt.Sprintf("duplicate edge id %q", e.ID))
	}
	if _, ok := m.nodeIndex[e.From]; !ok {
		return contractViolation(fmt.Sprintf("edge %q starts at unknown node %q", e.ID, e.From))
	}
	if _, ok := m.nodeIndex[e.To]; !ok {
		return contractViolation(fmt.Sprintf("edge %q ends at unknown node %q", e.ID, e.To))
	}
	m.edgeIndex[e.ID] = len(m.edges)
	m.edges = append(m.edges, e)
	return nil
}

// Validate checks referential integrity of the map
func (m *MindMap) Validate(sourceIDs map[string]bool) error {
	for _, e := range m.edges {
		if _, ok := m.nodeIndex[e.From]; !ok {
			return contractViolation(fmt.Sprintf("edge %q references non-existent node %q", e.ID, e.From))
		}
		if _, ok := m.nodeIndex[e.To]; !ok {
			return contractViolation(fmt.Sprintf("edge %q references non-existent node %q", e.ID, e.To))
		}
	}
	if sourceIDs == nil {
		return nil
	}
	for _, n := range m.nodes {
		if n.Type == valueobjects.NodeTypeSource && !sourceIDs[n.ID] {
			return contractViolation(fmt.Sprintf("source node %q does not match any supplied source", n.ID))
		}
	}
	return nil
}

// Nodes returns a copy of the nodes in generation order
func (m *MindMap) Nodes() []MindMapNode {
	out := make([]MindMapNode, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Edges returns a copy of the edges in generation order
func (m *MindMap) Edges() []MindMapEdge {
	out := make([]MindMapEdge, len(m.edges))
	copy(out, m.edges)
	return out
}

// HasNode reports whether a node id exists
func (m *MindMap) HasNode(id string) bool {
	_, ok := m.nodeIndex[id]
	return ok
}

func (m *MindMap) GeneratedAt() time.Time { return m.generatedAt }

// Clone returns an independent copy
func (m *MindMap) Clone() *MindMap {
	c := &MindMap{
		nodes:       m.Nodes(),
		edges:       m.Edges(),
		nodeIndex:   make(map[string]int, len(m.nodeIndex)),
		edgeIndex:   make(map[string]int, len(m.edgeIndex)),
		generatedAt: m.generatedAt,
	}
	for k, v := range m.nodeIndex {
		c.nodeIndex[k] = v
	}
	for k, v := range m.edgeIndex {
		c.edgeIndex[k] = v
	}
	return c
}

func contractViolation(msg string) error {
	return pkgerrors.NewValidationError("invalid mind map: " + msg).WithCode(pkgerrors.CodeContractViolation)
}
