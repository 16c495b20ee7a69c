package aggregates

import (
	"testing"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNodes() []MindMapNode {
	return []MindMapNode{
		{ID: "src_1", Label: "RAG System Design.pdf", Type: valueobjects.NodeTypeSource},
		{ID: "c_retrieval", Label: "Retrieval", Type: valueobjects.NodeTypeConcept},
	}
}

func TestBuildMindMap(t *testing.T) {
	m, err := BuildMindMap(sampleNodes(), []MindMapEdge{
		{ID: "e1", From: "src_1", To: "c_retrieval", Label: "describes"},
	}, map[string]bool{"src_1": true})
	require.NoError(t, err)

	assert.Len(t, m.Nodes(), 2)
	assert.Len(t, m.Edges(), 1)
	assert.True(t, m.HasNode("c_retrieval"))
}

func TestBuildMindMap_Violations(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []MindMapNode
		edges   []MindMapEdge
		sources map[string]bool
	}{
		{
			name:  "dangling edge",
			nodes: sampleNodes(),
			edges: []MindMapEdge{{ID: "e1", From: "src_1", To: "c_missing"}},
		},
		{
			name:  "duplicate node",
			nodes: append(sampleNodes(), MindMapNode{ID: "src_1", Label: "again", Type: valueobjects.NodeTypeSource}),
		},
		{
			name:  "unknown node type",
			nodes: []MindMapNode{{ID: "n1", Label: "x", Type: "topic"}},
		},
		{
			name:  "duplicate edge",
			nodes: sampleNodes(),
			edges: []MindMapEdge{
				{ID: "e1", From: "src_1", To: "c_retrieval"},
				{ID: "e1", From: "c_retrieval", To: "src_1"},
			},
		},
		{
			name:    "source node not supplied",
			nodes:   sampleNodes(),
			sources: map[string]bool{"src_other": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMindMap(tt.nodes, tt.edges, tt.sources)
			require.Error(t, err)
			appErr := pkgerrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeContractViolation, appErr.Code)
		})
	}
}

func TestBuildMindMap_NilSourceSetSkipsCheck(t *testing.T) {
	_, err := BuildMindMap(sampleNodes(), nil, nil)
	assert.NoError(t, err)
}

func TestMindMap_CloneIsIndependent(t *testing.T) {
	m, err := BuildMindMap(sampleNodes(), nil, nil)
	require.NoError(t, err)

	c := m.Clone()
	require.NoError(t, c.AddNode(MindMapNode{ID: "c_new", Label: "New", Type: valueobjects.NodeTypeConcept}))

	assert.False(t, m.HasNode("c_new"))
	assert.True(t, c.HasNode("c_new"))
}

func TestNewMindMapIsEmpty(t *testing.T) {
	m := NewMindMap()
	assert.Empty(t, m.Nodes())
	assert.Empty(t, m.Edges())
}
