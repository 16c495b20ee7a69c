package events

import "time"

// Event type names
const (
	TypeProjectCreated         = "project.created"
	TypeProjectDeleted         = "project.deleted"
	TypeSourceAdded            = "source.added"
	TypeSourceIndexed          = "source.indexed"
	TypeSourceFailed           = "source.failed"
	TypeSourceRemoved          = "source.removed"
	TypeSummaryUpdated         = "summary.updated"
	TypeAudioOverviewGenerated = "audio_overview.generated"
	TypeAudioOverviewCleared   = "audio_overview.cleared"
	TypeMindMapReplaced        = "mind_map.replaced"
	TypeMessageAppended        = "message.appended"
)

// ProjectCreated is raised when a project is created
type ProjectCreated struct {
	BaseEvent
	Name string `json:"name"`
}

func NewProjectCreated(projectID, name string, version int, at time.Time) ProjectCreated {
	return ProjectCreated{BaseEvent: newBase(projectID, TypeProjectCreated, version, at), Name: name}
}

// ProjectDeleted is raised when a project is removed from the workspace
type ProjectDeleted struct {
	BaseEvent
}

func NewProjectDeleted(projectID string, version int, at time.Time) ProjectDeleted {
	return ProjectDeleted{BaseEvent: newBase(projectID, TypeProjectDeleted, version, at)}
}

// SourceAdded is raised when a placeholder source is inserted
type SourceAdded struct {
	BaseEvent
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
}

func NewSourceAdded(projectID, sourceID, name, kind string, version int, at time.Time) SourceAdded {
	return SourceAdded{
		BaseEvent: newBase(projectID, TypeSourceAdded, version, at),
		SourceID:  sourceID,
		Name:      name,
		Kind:      kind,
	}
}

// SourceIndexed is raised when extraction succeeds
type SourceIndexed struct {
	BaseEvent
	SourceID      string `json:"source_id"`
	Name          string `json:"name"`
	ContentLength int    `json:"content_length"`
}

func NewSourceIndexed(projectID, sourceID, name string, contentLength, version int, at time.Time) SourceIndexed {
	return SourceIndexed{
		BaseEvent:     newBase(projectID, TypeSourceIndexed, version, at),
		SourceID:      sourceID,
		Name:          name,
		ContentLength: contentLength,
	}
}

// SourceFailed is raised when extraction or summarization fails
type SourceFailed struct {
	BaseEvent
	SourceID string `json:"source_id"`
	Reason   string `json:"reason"`
}

func NewSourceFailed(projectID, sourceID, reason string, version int, at time.Time) SourceFailed {
	return SourceFailed{
		BaseEvent: newBase(projectID, TypeSourceFailed, version, at),
		SourceID:  sourceID,
		Reason:    reason,
	}
}

// SourceRemoved is raised when a source is deleted
type SourceRemoved struct {
	BaseEvent
	SourceID string `json:"source_id"`
}

func NewSourceRemoved(projectID, sourceID string, version int, at time.Time) SourceRemoved {
	return SourceRemoved{BaseEvent: newBase(projectID, TypeSourceRemoved, version, at), SourceID: sourceID}
}

// SummaryUpdated is raised when the project summary is rewritten
type SummaryUpdated struct {
	BaseEvent
	Origin string `json:"origin"` // "source" or "regenerate"
}

func NewSummaryUpdated(projectID, origin string, version int, at time.Time) SummaryUpdated {
	return SummaryUpdated{BaseEvent: newBase(projectID, TypeSummaryUpdated, version, at), Origin: origin}
}

// AudioOverviewGenerated is raised when an audio overview is stored
type AudioOverviewGenerated struct {
	BaseEvent
	Bytes int `json:"bytes"`
}

func NewAudioOverviewGenerated(projectID string, size, version int, at time.Time) AudioOverviewGenerated {
	return AudioOverviewGenerated{BaseEvent: newBase(projectID, TypeAudioOverviewGenerated, version, at), Bytes: size}
}

// AudioOverviewCleared is raised when a stale audio overview is dropped
type AudioOverviewCleared struct {
	BaseEvent
}

func NewAudioOverviewCleared(projectID string, version int, at time.Time) AudioOverviewCleared {
	return AudioOverviewCleared{BaseEvent: newBase(projectID, TypeAudioOverviewCleared, version, at)}
}

// MindMapReplaced is raised when the mind map is regenerated
type MindMapReplaced struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

func NewMindMapReplaced(projectID string, nodes, edges, version int, at time.Time) MindMapReplaced {
	return MindMapReplaced{
		BaseEvent: newBase(projectID, TypeMindMapReplaced, version, at),
		NodeCount: nodes,
		EdgeCount: edges,
	}
}

// MessageAppended is raised when a message joins a conversation
type MessageAppended struct {
	BaseEvent
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Role           string `json:"role"`
	CitationCount  int    `json:"citation_count"`
}

func NewMessageAppended(projectID, conversationID, messageID, role string, citations, version int, at time.Time) MessageAppended {
	return MessageAppended{
		BaseEvent:      newBase(projectID, TypeMessageAppended, version, at),
		ConversationID: conversationID,
		MessageID:      messageID,
		Role:           role,
		CitationCount:  citations,
	}
}
