package flows

import (
	"context"

	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// MindMapSource is one document offered to mind map generation
type MindMapSource struct {
	ID      string `validate:"required"`
	Name    string
	Content string
}

// MindMapInput lists the documents to map
type MindMapInput struct {
	Sources []MindMapSource `validate:"dive"`
}

type mindMapNodeOutput struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	Type  string `json:"type" validate:"oneof=source concept"`
}

type mindMapEdgeOutput struct {
	ID    string `json:"id" validate:"required"`
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Label string `json:"label,omitempty"`
}

type mindMapOutput struct {
	Nodes []mindMapNodeOutput `json:"nodes" validate:"dive"`
	Edges []mindMapEdgeOutput `json:"edges" validate:"dive"`
}

var mindMapSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id":    map[string]any{"type": "STRING"},
					"label": map[string]any{"type": "STRING"},
					"type":  map[string]any{"type": "STRING", "enum": []string{"source", "concept"}},
				},
				"required": []string{"id", "label", "type"},
			},
		},
		"edges": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id":    map[string]any{"type": "STRING"},
					"from":  map[string]any{"type": "STRING"},
					"to":    map[string]any{"type": "STRING"},
					"label": map[string]any{"type": "STRING"},
				},
				"required": []string{"id", "from", "to"},
			},
		},
	},
	"required": []string{"nodes", "edges"},
}

// GenerateMindMap builds a concept graph over the sources. With no sources
// it returns an empty map without calling the model.
func (f *Flows) GenerateMindMap(ctx context.Context, in MindMapInput) (*aggregates.MindMap, error) {
	if len(in.Sources) == 0 {
		return aggregates.NewMindMap(), nil
	}

	out, err := newPrompt[MindMapInput, mindMapOutput](f, PromptMindMap, mindMapSchema).run(ctx, in)
	if err != nil {
		return nil, err
	}

	nodes := make([]aggregates.MindMapNode, len(out.Nodes))
	for i, n := range out.Nodes {
		nodes[i] = aggregates.MindMapNode{ID: n.ID, Label: n.Label, Type: valueobjects.NodeType(n.Type)}
	}
	edges := make([]aggregates.MindMapEdge, len(out.Edges))
	for i, e := range out.Edges {
		edges[i] = aggregates.MindMapEdge{ID: e.ID, From: e.From, To: e.To, Label: e.Label}
	}

	allowed := make(map[string]bool, len(in.Sources))
	for _, s := range in.Sources {
		allowed[s.ID] = true
	}

	m, err := aggregates.BuildMindMap(nodes, edges, allowed)
	if err != nil {
		f.logger.Sugar().Warnw("model returned an inconsistent mind map", "error", err)
		return nil, pkgerrors.NewExternalError("model", err).WithCode(pkgerrors.CodeContractViolation)
	}
	return m, nil
}
