package aggregates

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/domain/events"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// Summary origins recorded on SummaryUpdated events
const (
	SummaryFromSource     = "source"
	SummaryFromRegenerate = "regenerate"
)

// Project is the aggregate root of the notebook. It exclusively owns its
// sources, conversations, mind map and audio overview.
type Project struct {
	id            valueobjects.ProjectID
	name          string
	sources       []*entities.Source // newest first
	summary       string
	conversations []*entities.Conversation
	mindMap       *MindMap
	audioOverview string
	maxSources    int
	createdAt     time.Time
	updatedAt     time.Time
	version       int

	events []events.DomainEvent
}

// NewProject creates an empty project with one conversation
func NewProject(id valueobjects.ProjectID, name string, cfg *config.DomainConfig) (*Project, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("project ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = cfg.DefaultProjectName
	}
	conv, err := entities.NewConversation(cfg.DefaultConversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Project{
		id:            id,
		name:          name,
		sources:       []*entities.Source{},
		summary:       cfg.PlaceholderSummary,
		conversations: []*entities.Conversation{conv},
		maxSources:    cfg.MaxSourcesPerProj,
		createdAt:     now,
		updatedAt:     now,
		version:       1,
	}
	p.addEvent(events.NewProjectCreated(id.String(), name, p.version, now))
	return p, nil
}

// ReconstructProject rebuilds a project from stored state without raising events
func ReconstructProject(
	id valueobjects.ProjectID,
	name string,
	sources []*entities.Source,
	summary string,
	conversations []*entities.Conversation,
	mindMap *MindMap,
	audioOverview string,
	createdAt time.Time,
) *Project {
	if sources == nil {
		sources = []*entities.Source{}
	}
	return &Project{
		id:            id,
		name:          name,
		sources:       sources,
		summary:       summary,
		conversations: conversations,
		mindMap:       mindMap,
		audioOverview: audioOverview,
		createdAt:     createdAt,
		updatedAt:     createdAt,
		version:       1,
	}
}

func (p *Project) ID() valueobjects.ProjectID { return p.id }
func (p *Project) Name() string { return p.name }
func (p *Project) Summary() string { return p.summary }
func (p *Project) AudioOverview() string { return p.audioOverview }
func (p *Project) HasAudioOverview() bool { return p.audioOverview != "" }
func (p *Project) CreatedAt() time.Time { return p.createdAt }
func (p *Project) UpdatedAt() time.Time { return p.updatedAt }
func (p *Project) Version() int { return p.version }
func (p *Project) SourceCount() int { return len(p.sources) }

// Sources returns copies of the sources, newest first
func (p *Project) Sources() []*entities.Source {
	out := make([]*entities.Source, len(p.sources))
	for i, s := range p.sources {
		out[i] = s.Clone()
	}
	return out
}

// IndexedSources returns copies of the sources whose extraction succeeded
func (p *Project) IndexedSources() []*entities.Source {
	out := make([]*entities.Source, 0, len(p.sources))
	for _, s := range p.sources {
		if s.IsIndexed() {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Source looks up a source by id
func (p *Project) Source(id valueobjects.SourceID) (*entities.Source, bool) {
	if i := p.sourceIndex(id); i >= 0 {
		return p.sources[i].Clone(), true
	}
	return nil, false
}

// Conversations returns copies of all conversations, primary first
func (p *Project) Conversations() []*entities.Conversation {
	out := make([]*entities.Conversation, len(p.conversations))
	for i, c := range p.conversations {
		out[i] = c.Clone()
	}
	return out
}

// PrimaryConversation returns a copy of the first conversation
func (p *Project) PrimaryConversation() *entities.Conversation {
	if len(p.conversations) == 0 {
		return nil
	}
	return p.conversations[0].Clone()
}

// Conversation returns a copy of the conversation with the given id.
// An empty id selects the primary conversation.
func (p *Project) Conversation(id string) (*entities.Conversation, bool) {
	if id == "" {
		c := p.PrimaryConversation()
		return c, c != nil
	}
	for _, c := range p.conversations {
		if c.ID() == id {
			return c.Clone(), true
		}
	}
	return nil, false
}

// MindMap returns a copy of the current mind map, or nil
func (p *Project) MindMap() *MindMap {
	if p.mindMap == nil {
		return nil
	}
	return p.mindMap.Clone()
}

// AddSource inserts a pending source at the head of the list
func (p *Project) AddSource(src *entities.Source) error {
	if src == nil {
		return pkgerrors.NewValidationError("source cannot be nil")
	}
	if src.Status() != valueobjects.SourceProcessing {
		return pkgerrors.NewValidationError("new sources must start in processing state")
	}
	if p.sourceIndex(src.ID()) >= 0 {
		return pkgerrors.NewConflictError(fmt.Sprintf("source %s already exists in project", src.ID()))
	}
	if p.maxSources > 0 && len(p.sources) >= p.maxSources {
		return pkgerrors.NewValidationError(fmt.Sprintf("a project can hold at most %d sources", p.maxSources))
	}

	p.sources = append([]*entities.Source{src}, p.sources...)
	p.touch()
	p.addEvent(events.NewSourceAdded(p.id.String(), src.ID().String(), src.Name(), string(src.Kind()), p.version, p.updatedAt))
	return nil
}

// MarkSourceIndexed commits extracted content for a pending source
func (p *Project) MarkSourceIndexed(id valueobjects.SourceID, name, content string) (*entities.Source, error) {
	i := p.sourceIndex(id)
	if i < 0 {
		return nil, pkgerrors.NewNotFoundError("source " + id.String())
	}
	if err := p.sources[i].MarkIndexed(name, content); err != nil {
		return nil, err
	}
	p.touch()
	src := p.sources[i]
	p.addEvent(events.NewSourceIndexed(p.id.String(), id.String(), src.Name(), len(src.Content()), p.version, p.updatedAt))
	return src.Clone(), nil
}

// MarkSourceFailed records an extraction failure for a pending source
func (p *Project) MarkSourceFailed(id valueobjects.SourceID, message string) error {
	i := p.sourceIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("source " + id.String())
	}
	if err := p.sources[i].MarkFailed(message); err != nil {
		return err
	}
	p.touch()
	p.addEvent(events.NewSourceFailed(p.id.String(), id.String(), message, p.version, p.updatedAt))
	return nil
}

// RemoveSource deletes a source. Citations and mind map nodes that point
// at it are left dangling.
func (p *Project) RemoveSource(id valueobjects.SourceID) error {
	i := p.sourceIndex(id)
	if i < 0 {
		return pkgerrors.NewNotFoundError("source " + id.String())
	}
	p.sources = append(p.sources[:i:i], p.sources[i+1:]...)
	p.touch()
	p.addEvent(events.NewSourceRemoved(p.id.String(), id.String(), p.version, p.updatedAt))
	return nil
}

// ApplySourceSummary overwrites the project summary with the summary of a
// single newly indexed source.
func (p *Project) ApplySourceSummary(sourceName, summary string) {
	p.summary = fmt.Sprintf(config.SummaryTemplate, sourceName, summary)
	p.touch()
	p.addEvent(events.NewSummaryUpdated(p.id.String(), SummaryFromSource, p.version, p.updatedAt))
}

// ReplaceSummary stores a summary of the whole corpus. The audio overview
// was derived from the previous summary and is dropped.
func (p *Project) ReplaceSummary(summary string) {
	p.summary = summary
	p.touch()
	p.addEvent(events.NewSummaryUpdated(p.id.String(), SummaryFromRegenerate, p.version, p.updatedAt))
	if p.audioOverview != "" {
		p.audioOverview = ""
		p.addEvent(events.NewAudioOverviewCleared(p.id.String(), p.version, p.updatedAt))
	}
}

// CombinedContent joins the content of every source in list order
func (p *Project) CombinedContent() string {
	parts := make([]string, len(p.sources))
	for i, s := range p.sources {
		parts[i] = s.Content()
	}
	return strings.Join(parts, "\n\n")
}

// SetAudioOverview stores a synthesized audio data URI
func (p *Project) SetAudioOverview(dataURI string) error {
	if dataURI == "" {
		return pkgerrors.NewValidationError("audio overview cannot be empty")
	}
	p.audioOverview = dataURI
	p.touch()
	p.addEvent(events.NewAudioOverviewGenerated(p.id.String(), len(dataURI), p.version, p.updatedAt))
	return nil
}

// ReplaceMindMap swaps in a freshly generated mind map
func (p *Project) ReplaceMindMap(m *MindMap) error {
	if m == nil {
		return pkgerrors.NewValidationError("mind map cannot be nil")
	}
	p.mindMap = m
	p.touch()
	p.addEvent(events.NewMindMapReplaced(p.id.String(), len(m.nodes), len(m.edges), p.version, p.updatedAt))
	return nil
}

// ResolveCitation looks a cited source up in the current source list
func (p *Project) ResolveCitation(sourceID string) *entities.SourceRef {
	for _, s := range p.sources {
		if s.ID().String() == sourceID {
			return &entities.SourceRef{
				ID:     s.ID().String(),
				Name:   s.Name(),
				Status: s.Status(),
				Page:   s.Page(),
			}
		}
	}
	return nil
}

// AppendMessage adds a message to a conversation. An empty conversation id
// targets the primary conversation.
func (p *Project) AppendMessage(conversationID string, msg entities.Message) error {
	var conv *entities.Conversation
	if conversationID == "" && len(p.conversations) > 0 {
		conv = p.conversations[0]
	}
	for _, c := range p.conversations {
		if c.ID() == conversationID {
			conv = c
			break
		}
	}
	if conv == nil {
		return pkgerrors.NewNotFoundError("conversation " + conversationID)
	}

	conv.Append(msg)
	p.touch()
	p.addEvent(events.NewMessageAppended(p.id.String(), conv.ID(), msg.ID, string(msg.Role), len(msg.Citations), p.version, p.updatedAt))
	return nil
}

// MarkDeleted records the deletion event before the store drops the project
func (p *Project) MarkDeleted() {
	p.touch()
	p.addEvent(events.NewProjectDeleted(p.id.String(), p.version, p.updatedAt))
}

// Clone returns a deep copy without uncommitted events
func (p *Project) Clone() *Project {
	c := *p
	c.sources = p.Sources()
	c.conversations = p.Conversations()
	c.mindMap = p.MindMap()
	c.events = nil
	return &c
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Project) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (p *Project) MarkEventsAsCommitted() {
	p.events = nil
}

func (p *Project) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

func (p *Project) touch() {
	p.updatedAt = time.Now()
	p.version++
}

func (p *Project) sourceIndex(id valueobjects.SourceID) int {
	for i, s := range p.sources {
		if s.ID().Equals(id) {
			return i
		}
	}
	return -1
}
