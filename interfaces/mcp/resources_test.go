package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProjectID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid project URI", uri: "scholar://projects/proj_1", expected: "proj_1"},
		{name: "invalid prefix", uri: "file://projects/proj_1", expected: ""},
		{name: "nested path", uri: "scholar://projects/proj_1/sources", expected: ""},
		{name: "missing id", uri: "scholar://projects/", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractProjectID(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleProjectsResource(t *testing.T) {
	s := newTestServer(t, fakeFlows{})

	result, err := s.handleProjectsResource(context.Background(), makeReadResourceRequest("scholar://projects"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, "AI Research Analysis")
	assert.Contains(t, result.Contents[0].Text, "Empty Project")
}

func TestServer_handleProjectResource(t *testing.T) {
	s := newTestServer(t, fakeFlows{})
	ctx := context.Background()

	t.Run("returns project state", func(t *testing.T) {
		result, err := s.handleProjectResource(ctx, makeReadResourceRequest("scholar://projects/proj_1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "RAG System Design.pdf")
		assert.Contains(t, result.Contents[0].Text, "msg_welcome")
	})

	t.Run("unknown project is not found", func(t *testing.T) {
		_, err := s.handleProjectResource(ctx, makeReadResourceRequest("scholar://projects/proj_9"))
		assert.Error(t, err)
	})

	t.Run("malformed uri is not found", func(t *testing.T) {
		_, err := s.handleProjectResource(ctx, makeReadResourceRequest("scholar://elsewhere"))
		assert.Error(t, err)
	})
}
