package ports

import (
	"context"

	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/domain/events"
)

// MutateFunc edits a project in place. Returning an error discards the edit.
type MutateFunc func(p *aggregates.Project) error

// ProjectRepository is the state container for all projects.
// Every read returns a copy; every write is a read-modify-write serialized
// per project id.
type ProjectRepository interface {
	// Create inserts a project at the head of the collection
	Create(ctx context.Context, project *aggregates.Project) error

	// Get returns a copy of a project
	Get(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error)

	// List returns copies of all projects, newest first
	List(ctx context.Context) ([]*aggregates.Project, error)

	// Update applies fn under the project's lock and returns the committed copy
	Update(ctx context.Context, id valueobjects.ProjectID, fn MutateFunc) (*aggregates.Project, error)

	// Delete removes a project
	Delete(ctx context.Context, id valueobjects.ProjectID) error
}

// Selection is the pair of selection pointers
type Selection struct {
	ActiveProjectID string
	ActiveSourceID  string
}

// WorkspaceState holds the selection pointers and busy flags
type WorkspaceState interface {
	Selection(ctx context.Context) Selection

	// SelectProject makes a project active and clears the active source.
	// A zero id clears the selection.
	SelectProject(ctx context.Context, id valueobjects.ProjectID) error

	// SelectSource points at a source of the active project. A zero id clears it.
	SelectSource(ctx context.Context, projectID valueobjects.ProjectID, sourceID valueobjects.SourceID) error

	// ClearSourceSelection clears the active source if it is sourceID
	ClearSourceSelection(ctx context.Context, sourceID valueobjects.SourceID)

	// BeginUpload and EndUpload maintain the per-project uploading counter
	BeginUpload(ctx context.Context, id valueobjects.ProjectID)
	EndUpload(ctx context.Context, id valueobjects.ProjectID)

	// Uploading lists projects with an upload in flight
	Uploading(ctx context.Context) map[string]int
}

// KeyedLocker serializes work per key
type KeyedLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
