package queries

import (
	"time"

	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
)

// ProjectSummary is a project as shown in the project list
type ProjectSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	SourceCount      int    `json:"sourceCount"`
	HasMindMap       bool   `json:"hasMindMap"`
	HasAudioOverview bool   `json:"hasAudioOverview"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// ListProjectsResult is the result of listing projects
type ListProjectsResult struct {
	Projects        []ProjectSummary `json:"projects"`
	ActiveProjectID string           `json:"activeProjectId,omitempty"`
	TotalCount      int              `json:"totalCount"`
}

// ProjectView is the full state of a project
type ProjectView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Summary       string             `json:"summary"`
	AudioOverview string             `json:"audioOverview,omitempty"`
	Sources       []SourceView       `json:"sources"`
	Conversations []ConversationView `json:"conversations"`
	MindMap       *MindMapView       `json:"mindMap"`
	Uploading     bool               `json:"uploading"`
	Version       int                `json:"version"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
}

// SourceView is a source as returned by the API
type SourceView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Content   string `json:"content"`
	Page      int    `json:"page"`
	MediaType string `json:"mediaType,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ConversationView is a conversation with its messages
type ConversationView struct {
	ID       string        `json:"id"`
	Messages []MessageView `json:"messages"`
}

// MessageView is one conversation entry
type MessageView struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	Citations []CitationView `json:"citations"`
	CreatedAt string         `json:"createdAt"`
}

// CitationView is a citation. Source is null when the cited id did not
// resolve to a source at answer time.
type CitationView struct {
	SourceID string         `json:"sourceId"`
	Page     int            `json:"page"`
	Snippet  string         `json:"snippet"`
	Source   *SourceRefView `json:"source"`
}

// SourceRefView is the snapshot of a cited source
type SourceRefView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Page   int    `json:"page"`
}

// MindMapView is a concept graph
type MindMapView struct {
	Nodes       []MindMapNodeView `json:"nodes"`
	Edges       []MindMapEdgeView `json:"edges"`
	GeneratedAt string            `json:"generatedAt,omitempty"`
}

// MindMapNodeView is one mind map node
type MindMapNodeView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// MindMapEdgeView is one mind map edge
type MindMapEdgeView struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// WorkspaceView is the selection state
type WorkspaceView struct {
	ActiveProjectID string         `json:"activeProjectId,omitempty"`
	ActiveSourceID  string         `json:"activeSourceId,omitempty"`
	Uploading       map[string]int `json:"uploading"`
	ProjectCount    int            `json:"projectCount"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// NewProjectSummary maps a project to its list entry
func NewProjectSummary(p *aggregates.Project) ProjectSummary {
	return ProjectSummary{
		ID:               p.ID().String(),
		Name:             p.Name(),
		SourceCount:      p.SourceCount(),
		HasMindMap:       p.MindMap() != nil,
		HasAudioOverview: p.HasAudioOverview(),
		CreatedAt:        formatTime(p.CreatedAt()),
		UpdatedAt:        formatTime(p.UpdatedAt()),
	}
}

// NewProjectView maps a project to its full view
func NewProjectView(p *aggregates.Project, uploading bool) *ProjectView {
	v := &ProjectView{
		ID:            p.ID().String(),
		Name:          p.Name(),
		Summary:       p.Summary(),
		AudioOverview: p.AudioOverview(),
		Sources:       make([]SourceView, 0, p.SourceCount()),
		Uploading:     uploading,
		Version:       p.Version(),
		CreatedAt:     formatTime(p.CreatedAt()),
		UpdatedAt:     formatTime(p.UpdatedAt()),
	}
	for _, s := range p.Sources() {
		v.Sources = append(v.Sources, NewSourceView(s))
	}
	convs := p.Conversations()
	v.Conversations = make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		v.Conversations = append(v.Conversations, NewConversationView(c))
	}
	if m := p.MindMap(); m != nil {
		v.MindMap = NewMindMapView(m)
	}
	return v
}

// NewSourceView maps a source
func NewSourceView(s *entities.Source) SourceView {
	return SourceView{
		ID:        s.ID().String(),
		Name:      s.Name(),
		Kind:      string(s.Kind()),
		Status:    string(s.Status()),
		Content:   s.Content(),
		Page:      s.Page(),
		MediaType: s.MediaType(),
		URL:       s.URL(),
		CreatedAt: formatTime(s.CreatedAt()),
		UpdatedAt: formatTime(s.UpdatedAt()),
	}
}

// NewConversationView maps a conversation
func NewConversationView(c *entities.Conversation) ConversationView {
	msgs := c.Messages()
	v := ConversationView{ID: c.ID(), Messages: make([]MessageView, 0, len(msgs))}
	for _, m := range msgs {
		v.Messages = append(v.Messages, NewMessageView(m))
	}
	return v
}

// NewMessageView maps a message
func NewMessageView(m entities.Message) MessageView {
	v := MessageView{
		ID:        m.ID,
		Role:      string(m.Role),
		Text:      m.Text,
		Citations: make([]CitationView, 0, len(m.Citations)),
		CreatedAt: formatTime(m.CreatedAt),
	}
	for _, c := range m.Citations {
		cv := CitationView{SourceID: c.SourceID, Page: c.Page, Snippet: c.Snippet}
		if c.Source != nil {
			cv.Source = &SourceRefView{
				ID:     c.Source.ID,
				Name:   c.Source.Name,
				Status: string(c.Source.Status),
				Page:   c.Source.Page,
			}
		}
		v.Citations = append(v.Citations, cv)
	}
	return v
}

// NewMindMapView maps a mind map
func NewMindMapView(m *aggregates.MindMap) *MindMapView {
	nodes := m.Nodes()
	edges := m.Edges()
	v := &MindMapView{
		Nodes:       make([]MindMapNodeView, 0, len(nodes)),
		Edges:       make([]MindMapEdgeView, 0, len(edges)),
		GeneratedAt: formatTime(m.GeneratedAt()),
	}
	for _, n := range nodes {
		v.Nodes = append(v.Nodes, MindMapNodeView{ID: n.ID, Label: n.Label, Type: string(n.Type)})
	}
	for _, e := range edges {
		v.Edges = append(v.Edges, MindMapEdgeView{ID: e.ID, From: e.From, To: e.To, Label: e.Label})
	}
	return v
}
