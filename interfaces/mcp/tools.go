package mcp

import (
	"context"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct{}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects        []queries.ProjectSummary `json:"projects"`
	ActiveProjectID string                   `json:"active_project_id,omitempty"`
}

// CreateProjectInput is the input schema for the create_project tool.
type CreateProjectInput struct {
	Name string `json:"name,omitempty" jsonschema:"project name (default Untitled Project)"`
}

// ProjectOutput identifies a project and its current summary.
type ProjectOutput struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Sources   int    `json:"sources"`
}

// AddURLSourceInput is the input schema for the add_url_source tool.
type AddURLSourceInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"target project (default the active project)"`
	URL       string `json:"url" jsonschema:"address of the web page or video"`
	Kind      string `json:"kind,omitempty" jsonschema:"website or video (default website)"`
}

// SourceOutput is the output schema for the add_url_source tool.
type SourceOutput struct {
	Source queries.SourceView `json:"source"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	ProjectID      string `json:"project_id" jsonschema:"project whose sources answer the question"`
	Question       string `json:"question" jsonschema:"the question to ask"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to append to (default the primary one)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	MessageID string                 `json:"message_id"`
	Answer    string                 `json:"answer"`
	Citations []queries.CitationView `json:"citations"`
}

// ProjectInput names a project.
type ProjectInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project id"`
}

// MindMapOutput is the output schema for the generate_mind_map tool.
type MindMapOutput struct {
	Nodes []queries.MindMapNodeView `json:"nodes"`
	Edges []queries.MindMapEdgeView `json:"edges"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List every notebook project, newest first",
	}, s.handleListProjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_project",
		Description: "Create an empty project and make it active",
	}, s.handleCreateProject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_url_source",
		Description: "Ingest a web page or video into a project and wait until it is indexed",
	}, s.handleAddURLSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered only from the project's sources, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "regenerate_summary",
		Description: "Summarize all sources of a project",
	}, s.handleRegenerateSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_mind_map",
		Description: "Build a concept map over a project's indexed sources",
	}, s.handleGenerateMindMap)
}

func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	result, err := querybus.Ask[*queries.ListProjectsResult](ctx, s.queryBus, queries.ListProjectsQuery{})
	if err != nil {
		return nil, ListProjectsOutput{}, err
	}
	return nil, ListProjectsOutput{Projects: result.Projects, ActiveProjectID: result.ActiveProjectID}, nil
}

func (s *Server) handleCreateProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateProjectInput,
) (*mcp.CallToolResult, ProjectOutput, error) {
	cmd := commands.CreateProjectCommand{
		ProjectID: valueobjects.NewProjectID().String(),
		Name:      input.Name,
	}
	if err := s.commandBus.Send(ctx, cmd); err != nil {
		return nil, ProjectOutput{}, err
	}
	return s.project(ctx, cmd.ProjectID)
}

func (s *Server) handleAddURLSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddURLSourceInput,
) (*mcp.CallToolResult, SourceOutput, error) {
	kind := input.Kind
	if kind == "" {
		kind = string(valueobjects.SourceKindWebsite)
	}
	projectID := input.ProjectID
	if projectID == "" {
		ws, err := querybus.Ask[*queries.WorkspaceView](ctx, s.queryBus, queries.GetWorkspaceQuery{})
		if err != nil {
			return nil, SourceOutput{}, err
		}
		projectID = ws.ActiveProjectID
	}

	cmd := commands.AddSourceCommand{
		ProjectID: projectID,
		SourceID:  valueobjects.NewSourceID().String(),
		Kind:      kind,
		URL:       input.URL,
	}
	// a failed ingestion leaves the source in its error state and reports why
	if err := s.commandBus.Send(ctx, cmd); err != nil {
		return nil, SourceOutput{}, err
	}

	view, err := querybus.Ask[*queries.SourceView](ctx, s.queryBus, queries.GetSourceQuery{
		ProjectID: cmd.ProjectID,
		SourceID:  cmd.SourceID,
	})
	if err != nil {
		return nil, SourceOutput{}, err
	}
	return nil, SourceOutput{Source: *view}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	cmd := commands.SendMessageCommand{
		ProjectID:          input.ProjectID,
		ConversationID:     input.ConversationID,
		UserMessageID:      commands.NewMessageID(),
		AssistantMessageID: commands.NewMessageID(),
		Text:               input.Question,
	}
	if err := s.commandBus.Send(ctx, cmd); err != nil {
		return nil, AskOutput{}, err
	}

	msg, err := querybus.Ask[*queries.MessageView](ctx, s.queryBus, queries.GetMessageQuery{
		ProjectID:      cmd.ProjectID,
		ConversationID: cmd.ConversationID,
		MessageID:      cmd.AssistantMessageID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{MessageID: msg.ID, Answer: msg.Text, Citations: msg.Citations}, nil
}

func (s *Server) handleRegenerateSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectInput,
) (*mcp.CallToolResult, ProjectOutput, error) {
	if err := s.commandBus.Send(ctx, commands.RegenerateSummaryCommand{ProjectID: input.ProjectID}); err != nil {
		return nil, ProjectOutput{}, err
	}
	return s.project(ctx, input.ProjectID)
}

func (s *Server) handleGenerateMindMap(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectInput,
) (*mcp.CallToolResult, MindMapOutput, error) {
	if err := s.commandBus.Send(ctx, commands.GenerateMindMapCommand{ProjectID: input.ProjectID}); err != nil {
		return nil, MindMapOutput{}, err
	}
	view, err := querybus.Ask[*queries.MindMapView](ctx, s.queryBus, queries.GetMindMapQuery{ProjectID: input.ProjectID})
	if err != nil {
		return nil, MindMapOutput{}, err
	}
	return nil, MindMapOutput{Nodes: view.Nodes, Edges: view.Edges}, nil
}

func (s *Server) project(ctx context.Context, projectID string) (*mcp.CallToolResult, ProjectOutput, error) {
	view, err := querybus.Ask[*queries.ProjectView](ctx, s.queryBus, queries.GetProjectQuery{ProjectID: projectID})
	if err != nil {
		return nil, ProjectOutput{}, err
	}
	return nil, ProjectOutput{
		ProjectID: view.ID,
		Name:      view.Name,
		Summary:   view.Summary,
		Sources:   len(view.Sources),
	}, nil
}
