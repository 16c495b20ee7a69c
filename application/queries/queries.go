// Package queries defines the read-only operations of the notebook and the
// views they return.
package queries

import (
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// ListProjectsQuery lists every project, newest first
type ListProjectsQuery struct{}

// Validate validates the query
func (q ListProjectsQuery) Validate() error { return nil }

// GetProjectQuery fetches one project with its sources and conversations
type GetProjectQuery struct {
	ProjectID string
}

// Validate validates the query
func (q GetProjectQuery) Validate() error {
	if q.ProjectID == "" {
		return pkgerrors.NewValidationError("project ID is required")
	}
	return nil
}

// GetWorkspaceQuery returns the selection pointers and busy flags
type GetWorkspaceQuery struct{}

// Validate validates the query
func (q GetWorkspaceQuery) Validate() error { return nil }

// GetSourceQuery fetches a single source
type GetSourceQuery struct {
	ProjectID string
	SourceID  string
}

// Validate validates the query
func (q GetSourceQuery) Validate() error {
	if q.ProjectID == "" {
		return pkgerrors.NewValidationError("project ID is required")
	}
	if q.SourceID == "" {
		return pkgerrors.NewValidationError("source ID is required")
	}
	return nil
}

// GetConversationQuery fetches a conversation. An empty ConversationID
// selects the primary conversation.
type GetConversationQuery struct {
	ProjectID      string
	ConversationID string
}

// Validate validates the query
func (q GetConversationQuery) Validate() error {
	if q.ProjectID == "" {
		return pkgerrors.NewValidationError("project ID is required")
	}
	return nil
}

// GetMessageQuery fetches one message by id
type GetMessageQuery struct {
	ProjectID      string
	ConversationID string
	MessageID      string
}

// Validate validates the query
func (q GetMessageQuery) Validate() error {
	if q.ProjectID == "" {
		return pkgerrors.NewValidationError("project ID is required")
	}
	if q.MessageID == "" {
		return pkgerrors.NewValidationError("message ID is required")
	}
	return nil
}

// GetMindMapQuery fetches a project's mind map
type GetMindMapQuery struct {
	ProjectID string
}

// Validate validates the query
func (q GetMindMapQuery) Validate() error {
	if q.ProjectID == "" {
		return pkgerrors.NewValidationError("project ID is required")
	}
	return nil
}
