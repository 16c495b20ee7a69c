package handlers

import (
	"context"
	"fmt"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/application/queries"
	"github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"go.uber.org/zap"
)

// ProjectQueryHandler serves every read of project state
type ProjectQueryHandler struct {
	repo   ports.ProjectRepository
	ws     ports.WorkspaceState
	logger *zap.Logger
}

// NewProjectQueryHandler creates a new query handler
func NewProjectQueryHandler(repo ports.ProjectRepository, ws ports.WorkspaceState, logger *zap.Logger) *ProjectQueryHandler {
	return &ProjectQueryHandler{repo: repo, ws: ws, logger: logger}
}

// Register wires every query to its handler
func (h *ProjectQueryHandler) Register(b *bus.QueryBus) error {
	routes := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.ListProjectsQuery{}, bus.Typed(h.ListProjects)},
		{queries.GetProjectQuery{}, bus.Typed(h.GetProject)},
		{queries.GetWorkspaceQuery{}, bus.Typed(h.GetWorkspace)},
		{queries.GetSourceQuery{}, bus.Typed(h.GetSource)},
		{queries.GetConversationQuery{}, bus.Typed(h.GetConversation)},
		{queries.GetMessageQuery{}, bus.Typed(h.GetMessage)},
		{queries.GetMindMapQuery{}, bus.Typed(h.GetMindMap)},
	}
	for _, r := range routes {
		if err := b.Register(r.query, r.handler); err != nil {
			return fmt.Errorf("register %T: %w", r.query, err)
		}
	}
	return nil
}

// ListProjects returns every project, newest first
func (h *ProjectQueryHandler) ListProjects(ctx context.Context, q queries.ListProjectsQuery) (*queries.ListProjectsResult, error) {
	projects, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := &queries.ListProjectsResult{
		Projects:        make([]queries.ProjectSummary, 0, len(projects)),
		ActiveProjectID: h.ws.Selection(ctx).ActiveProjectID,
		TotalCount:      len(projects),
	}
	for _, p := range projects {
		result.Projects = append(result.Projects, queries.NewProjectSummary(p))
	}
	return result, nil
}

// GetProject returns the full state of one project
func (h *ProjectQueryHandler) GetProject(ctx context.Context, q queries.GetProjectQuery) (*queries.ProjectView, error) {
	p, err := h.load(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}
	_, uploading := h.ws.Uploading(ctx)[p.ID().String()]
	return queries.NewProjectView(p, uploading), nil
}

// GetWorkspace returns the selection pointers and in-flight uploads
func (h *ProjectQueryHandler) GetWorkspace(ctx context.Context, q queries.GetWorkspaceQuery) (*queries.WorkspaceView, error) {
	projects, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sel := h.ws.Selection(ctx)
	return &queries.WorkspaceView{
		ActiveProjectID: sel.ActiveProjectID,
		ActiveSourceID:  sel.ActiveSourceID,
		Uploading:       h.ws.Uploading(ctx),
		ProjectCount:    len(projects),
	}, nil
}

// GetSource returns one source of a project
func (h *ProjectQueryHandler) GetSource(ctx context.Context, q queries.GetSourceQuery) (*queries.SourceView, error) {
	p, err := h.load(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}
	sid, err := valueobjects.NewSourceIDFromString(q.SourceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	src, ok := p.Source(sid)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("source " + q.SourceID)
	}
	v := queries.NewSourceView(src)
	return &v, nil
}

// GetConversation returns a conversation, the primary one by default
func (h *ProjectQueryHandler) GetConversation(ctx context.Context, q queries.GetConversationQuery) (*queries.ConversationView, error) {
	p, err := h.load(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}
	conv, err := conversation(p, q.ConversationID)
	if err != nil {
		return nil, err
	}
	v := queries.NewConversationView(conv)
	return &v, nil
}

// GetMessage returns one message of a conversation
func (h *ProjectQueryHandler) GetMessage(ctx context.Context, q queries.GetMessageQuery) (*queries.MessageView, error) {
	p, err := h.load(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}
	conv, err := conversation(p, q.ConversationID)
	if err != nil {
		return nil, err
	}
	for _, m := range conv.Messages() {
		if m.ID == q.MessageID {
			v := queries.NewMessageView(m)
			return &v, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("message " + q.MessageID)
}

// GetMindMap returns the project's mind map, empty if none was generated
func (h *ProjectQueryHandler) GetMindMap(ctx context.Context, q queries.GetMindMapQuery) (*queries.MindMapView, error) {
	p, err := h.load(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}
	m := p.MindMap()
	if m == nil {
		return &queries.MindMapView{Nodes: []queries.MindMapNodeView{}, Edges: []queries.MindMapEdgeView{}}, nil
	}
	return queries.NewMindMapView(m), nil
}

func (h *ProjectQueryHandler) load(ctx context.Context, projectID string) (*aggregates.Project, error) {
	pid, err := valueobjects.NewProjectIDFromString(projectID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return h.repo.Get(ctx, pid)
}

func conversation(p *aggregates.Project, id string) (*entities.Conversation, error) {
	c, ok := p.Conversation(id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("conversation " + id)
	}
	return c, nil
}
