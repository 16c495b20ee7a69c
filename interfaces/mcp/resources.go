package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "scholar://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "List of all projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}",
		Name:        "project",
		Description: "Full state of a project: sources, summary, conversation and mind map",
		MIMEType:    "application/json",
	}, s.handleProjectResource)
}

func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	result, err := querybus.Ask[*queries.ListProjectsResult](ctx, s.queryBus, queries.ListProjectsQuery{})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return jsonResource(req.Params.URI, result.Projects)
}

func (s *Server) handleProjectResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID := extractProjectID(req.Params.URI)
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	view, err := querybus.Ask[*queries.ProjectView](ctx, s.queryBus, queries.GetProjectQuery{ProjectID: projectID})
	if err != nil {
		if pkgerrors.IsNotFound(err) || pkgerrors.IsValidation(err) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return jsonResource(req.Params.URI, view)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProjectID extracts the project ID from a URI like scholar://projects/{projectId}.
func extractProjectID(uri string) string {
	const prefix = uriScheme + "projects/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
