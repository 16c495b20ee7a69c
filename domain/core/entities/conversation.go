package entities

import (
	"strings"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// SourceRef is a snapshot of the source a citation resolved to.
// It is a weak reference: the source may be deleted afterwards.
type SourceRef struct {
	ID     string
	Name   string
	Status valueobjects.SourceStatus
	Page   int
}

// Citation links part of an answer to a passage
type Citation struct {
	SourceID string
	Page     int
	Snippet  string
	Source   *SourceRef // nil when the id did not resolve
}

// Message is an immutable conversation entry
type Message struct {
	ID        string
	Role      valueobjects.Role
	Text      string
	Citations []Citation
	CreatedAt time.Time
}

// NewMessage validates and builds a message
func NewMessage(id string, role valueobjects.Role, text string, citations []Citation) (Message, error) {
	if id == "" {
		return Message{}, pkgerrors.NewValidationError("message ID cannot be empty")
	}
	if role != valueobjects.RoleUser && role != valueobjects.RoleAssistant {
		return Message{}, pkgerrors.NewValidationError("unknown message role " + string(role))
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, pkgerrors.NewValidationError("message text cannot be empty")
	}
	return Message{
		ID:        id,
		Role:      role,
		Text:      text,
		Citations: citations,
		CreatedAt: time.Now(),
	}, nil
}

func (m Message) clone() Message {
	if m.Citations == nil {
		return m
	}
	cs := make([]Citation, len(m.Citations))
	for i, c := range m.Citations {
		cs[i] = c
		if c.Source != nil {
			ref := *c.Source
			cs[i].Source = &ref
		}
	}
	m.Citations = cs
	return m
}

// Conversation is an append-only message log
type Conversation struct {
	id       string
	messages []Message
}

// NewConversation creates an empty conversation
func NewConversation(id string) (*Conversation, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("conversation ID cannot be empty")
	}
	return &Conversation{id: id}, nil
}

// ReconstructConversation rebuilds a conversation with existing messages
func ReconstructConversation(id string, messages []Message) *Conversation {
	return &Conversation{id: id, messages: messages}
}

func (c *Conversation) ID() string { return c.id }

// Messages returns a copy of the message log
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of messages
func (c *Conversation) Len() int { return len(c.messages) }

// Append adds a message to the end of the log
func (c *Conversation) Append(m Message) {
	c.messages = append(c.messages, m)
}

// Clone returns an independent copy
func (c *Conversation) Clone() *Conversation {
	return &Conversation{id: c.id, messages: c.Messages()}
}
