package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/domain/events"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"go.uber.org/zap"
)

// ProjectStore keeps every project in process memory. Mutations of one
// project are serialized through a keyed lock; the collection itself is
// guarded by mu.
type ProjectStore struct {
	mu        sync.RWMutex
	order     []string // newest first
	projects  map[string]*aggregates.Project
	selection ports.Selection
	uploading map[string]int

	locks     ports.KeyedLocker
	publisher ports.EventPublisher
	logger    *zap.Logger
}

var (
	_ ports.ProjectRepository = (*ProjectStore)(nil)
	_ ports.WorkspaceState    = (*ProjectStore)(nil)
)

// NewProjectStore creates an empty store
func NewProjectStore(locks ports.KeyedLocker, publisher ports.EventPublisher, logger *zap.Logger) *ProjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewKeyedLock(logger)
	}
	return &ProjectStore{
		projects:  make(map[string]*aggregates.Project),
		uploading: make(map[string]int),
		locks:     locks,
		publisher: publisher,
		logger:    logger,
	}
}

// Create inserts a project at the head of the collection
func (s *ProjectStore) Create(ctx context.Context, project *aggregates.Project) error {
	if project == nil {
		return pkgerrors.NewValidationError("project cannot be nil")
	}
	id := project.ID().String()

	stored := project.Clone()
	evts := project.GetUncommittedEvents()
	project.MarkEventsAsCommitted()

	s.mu.Lock()
	if _, exists := s.projects[id]; exists {
		s.mu.Unlock()
		return pkgerrors.NewConflictError("project " + id + " already exists")
	}
	s.projects[id] = stored
	s.order = append([]string{id}, s.order...)
	s.mu.Unlock()

	s.publish(ctx, evts)
	return nil
}

// Get returns a copy of a project
func (s *ProjectStore) Get(ctx context.Context, id valueobjects.ProjectID) (*aggregates.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("project " + id.String())
	}
	return p.Clone(), nil
}

// List returns copies of all projects, newest first
func (s *ProjectStore) List(ctx context.Context) ([]*aggregates.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*aggregates.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.projects[id].Clone())
	}
	return out, nil
}

// Update applies fn to a working copy under the project's lock. The copy
// replaces the stored project only if fn succeeds.
func (s *ProjectStore) Update(ctx context.Context, id valueobjects.ProjectID, fn ports.MutateFunc) (*aggregates.Project, error) {
	release, err := s.locks.Acquire(ctx, id.String())
	if err != nil {
		return nil, pkgerrors.NewUnavailableError("project lock").WithCause(err)
	}
	defer release()

	s.mu.RLock()
	current, ok := s.projects[id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewNotFoundError("project " + id.String())
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	evts := working.GetUncommittedEvents()
	working.MarkEventsAsCommitted()

	s.mu.Lock()
	if _, still := s.projects[id.String()]; !still {
		s.mu.Unlock()
		return nil, pkgerrors.NewNotFoundError("project " + id.String())
	}
	s.projects[id.String()] = working
	s.mu.Unlock()

	s.publish(ctx, evts)
	return working.Clone(), nil
}

// Delete removes a project. If it was active, the first remaining project
// becomes active.
func (s *ProjectStore) Delete(ctx context.Context, id valueobjects.ProjectID) error {
	release, err := s.locks.Acquire(ctx, id.String())
	if err != nil {
		return pkgerrors.NewUnavailableError("project lock").WithCause(err)
	}
	defer release()

	key := id.String()

	s.mu.Lock()
	p, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		return pkgerrors.NewNotFoundError("project " + key)
	}
	delete(s.projects, key)
	delete(s.uploading, key)
	for i, pid := range s.order {
		if pid == key {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	if s.selection.ActiveProjectID == key {
		s.selection = ports.Selection{}
		if len(s.order) > 0 {
			s.selection.ActiveProjectID = s.order[0]
		}
	}
	s.mu.Unlock()

	p.MarkDeleted()
	s.publish(ctx, p.GetUncommittedEvents())
	return nil
}

// Selection returns the selection pointers
func (s *ProjectStore) Selection(ctx context.Context) ports.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SelectProject makes a project active and clears the active source
func (s *ProjectStore) SelectProject(ctx context.Context, id valueobjects.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.IsZero() {
		s.selection = ports.Selection{}
		return nil
	}
	if _, ok := s.projects[id.String()]; !ok {
		return pkgerrors.NewNotFoundError("project " + id.String())
	}
	s.selection = ports.Selection{ActiveProjectID: id.String()}
	return nil
}

// SelectSource points at a source of a project, activating the project
func (s *ProjectStore) SelectSource(ctx context.Context, projectID valueobjects.ProjectID, sourceID valueobjects.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("project " + projectID.String())
	}
	if sourceID.IsZero() {
		s.selection.ActiveSourceID = ""
		return nil
	}
	if _, ok := p.Source(sourceID); !ok {
		return pkgerrors.NewNotFoundError("source " + sourceID.String())
	}
	s.selection = ports.Selection{ActiveProjectID: projectID.String(), ActiveSourceID: sourceID.String()}
	return nil
}

// ClearSourceSelection clears the active source if it is sourceID
func (s *ProjectStore) ClearSourceSelection(ctx context.Context, sourceID valueobjects.SourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.ActiveSourceID == sourceID.String() {
		s.selection.ActiveSourceID = ""
	}
}

// BeginUpload marks an upload in flight for a project
func (s *ProjectStore) BeginUpload(ctx context.Context, id valueobjects.ProjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading[id.String()]++
}

// EndUpload clears one in-flight upload for a project
func (s *ProjectStore) EndUpload(ctx context.Context, id valueobjects.ProjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := id.String()
	if s.uploading[key] <= 1 {
		delete(s.uploading, key)
		return
	}
	s.uploading[key]--
}

// Uploading lists projects with uploads in flight
func (s *ProjectStore) Uploading(ctx context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.uploading))
	for k, v := range s.uploading {
		out[k] = v
	}
	return out
}

// IDs returns the project ids in collection order
func (s *ProjectStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *ProjectStore) publish(ctx context.Context, evts []events.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	sort.SliceStable(evts, func(i, j int) bool { return evts[i].GetVersion() < evts[j].GetVersion() })
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Error(err),
			zap.String("aggregate_id", evts[0].GetAggregateID()),
			zap.Int("count", len(evts)),
		)
	}
}
