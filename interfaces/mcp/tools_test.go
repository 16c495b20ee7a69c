package mcp

import (
	"context"
	"testing"

	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/domain/config"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_handleListProjects(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	result, out, err := s.handleListProjects(context.Background(), nil, ListProjectsInput{})

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "proj_1", out.ActiveProjectID)
	require.Len(t, out.Projects, 2)
	assert.Equal(t, "AI Research Analysis", out.Projects[0].Name)
}

func TestServer_handleCreateProject(t *testing.T) {
	s := newTestServer(t, fakeFlows{})
	ctx := context.Background()

	_, out, err := s.handleCreateProject(ctx, nil, CreateProjectInput{Name: "Reading list"})

	require.NoError(t, err)
	assert.Equal(t, "Reading list", out.Name)
	assert.Equal(t, config.DefaultDomainConfig().PlaceholderSummary, out.Summary)
	assert.Zero(t, out.Sources)

	_, list, err := s.handleListProjects(ctx, nil, ListProjectsInput{})
	require.NoError(t, err)
	assert.Equal(t, out.ProjectID, list.ActiveProjectID)
}

func TestServer_handleAddURLSource(t *testing.T) {
	t.Run("indexes into the active project", func(t *testing.T) {
		s := newTestServer(t, fakeFlows{})

		_, out, err := s.handleAddURLSource(context.Background(), nil, AddURLSourceInput{URL: "https://example.com/x"})

		require.NoError(t, err)
		assert.Equal(t, "Fetched Page", out.Source.Name)
		assert.Equal(t, "indexed", out.Source.Status)
		assert.Equal(t, "website", out.Source.Kind)
	})

	t.Run("reports unreachable address", func(t *testing.T) {
		s := newTestServer(t, fakeFlows{extractURL: func(url string) flows.ExtractionResult {
			return flows.ExtractionResult{Name: url, Content: flows.SentinelURLUnreachable}
		}})

		_, _, err := s.handleAddURLSource(context.Background(), nil, AddURLSourceInput{
			ProjectID: "proj_2",
			URL:       "https://example.com/gone",
			Kind:      "video",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "the address could not be reached")
	})

	t.Run("rejects invalid url", func(t *testing.T) {
		s := newTestServer(t, fakeFlows{})

		_, _, err := s.handleAddURLSource(context.Background(), nil, AddURLSourceInput{URL: "nope"})

		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestServer_handleAsk(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	_, out, err := s.handleAsk(context.Background(), nil, AskInput{ProjectID: "proj_1", Question: "What is RAG?"})

	require.NoError(t, err)
	assert.NotEmpty(t, out.MessageID)
	assert.Equal(t, "fake answer", out.Answer)
	require.Len(t, out.Citations, 1)
	require.NotNil(t, out.Citations[0].Source)
	assert.Equal(t, "src_rag_system", out.Citations[0].Source.ID)
}

func TestServer_handleAsk_EmptyProject(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	_, out, err := s.handleAsk(context.Background(), nil, AskInput{ProjectID: "proj_2", Question: "Anything?"})

	require.NoError(t, err)
	assert.Equal(t, config.MsgUploadBeforeAsking, out.Answer)
	assert.Empty(t, out.Citations)
}

func TestServer_handleRegenerateSummary(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	_, out, err := s.handleRegenerateSummary(context.Background(), nil, ProjectInput{ProjectID: "proj_1"})
	require.NoError(t, err)
	assert.Equal(t, "fake summary of AI Research Analysis", out.Summary)

	_, _, err = s.handleRegenerateSummary(context.Background(), nil, ProjectInput{ProjectID: "proj_2"})
	assert.True(t, pkgerrors.IsPrecondition(err))
}

func TestServer_handleGenerateMindMap(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	_, out, err := s.handleGenerateMindMap(context.Background(), nil, ProjectInput{ProjectID: "proj_1"})

	require.NoError(t, err)
	assert.Len(t, out.Nodes, 2)
	assert.Empty(t, out.Edges)
}
