package entities

import (
	"strings"
	"time"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// Source is one ingested document, video or website.
// It starts in processing and ends in exactly one of indexed or error.
type Source struct {
	id        valueobjects.SourceID
	name      string
	kind      valueobjects.SourceKind
	status    valueobjects.SourceStatus
	content   string
	page      int
	mediaType string
	url       string
	createdAt time.Time
	updatedAt time.Time
}

// SourceSpec describes a source about to be ingested
type SourceSpec struct {
	ID          valueobjects.SourceID
	Name        string
	Kind        valueobjects.SourceKind
	MediaType   string
	URL         string
	Placeholder string
}

// NewPendingSource creates the placeholder row shown while extraction runs
func NewPendingSource(spec SourceSpec) (*Source, error) {
	if spec.ID.IsZero() {
		return nil, pkgerrors.NewValidationError("source ID cannot be empty")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, pkgerrors.NewValidationError("source name cannot be empty")
	}
	if spec.Kind.IsURL() && spec.URL == "" {
		return nil, pkgerrors.NewValidationError("url is required for " + string(spec.Kind) + " sources")
	}

	now := time.Now()
	return &Source{
		id:        spec.ID,
		name:      spec.Name,
		kind:      spec.Kind,
		status:    valueobjects.SourceProcessing,
		content:   spec.Placeholder,
		page:      1,
		mediaType: spec.MediaType,
		url:       spec.URL,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSource rebuilds a source in an arbitrary state, used for seed data
func ReconstructSource(
	id valueobjects.SourceID,
	name string,
	kind valueobjects.SourceKind,
	status valueobjects.SourceStatus,
	content string,
	page int,
	createdAt time.Time,
) *Source {
	if page < 1 {
		page = 1
	}
	return &Source{
		id:        id,
		name:      name,
		kind:      kind,
		status:    status,
		content:   content,
		page:      page,
		createdAt: createdAt,
		updatedAt: createdAt,
	}
}

func (s *Source) ID() valueobjects.SourceID { return s.id }
func (s *Source) Name() string { return s.name }
func (s *Source) Kind() valueobjects.SourceKind { return s.kind }
func (s *Source) Status() valueobjects.SourceStatus { return s.status }
func (s *Source) Content() string { return s.content }
func (s *Source) Page() int { return s.page }
func (s *Source) MediaType() string { return s.mediaType }
func (s *Source) URL() string { return s.url }
func (s *Source) CreatedAt() time.Time { return s.createdAt }
func (s *Source) UpdatedAt() time.Time { return s.updatedAt }
func (s *Source) IsIndexed() bool { return s.status == valueobjects.SourceIndexed }

// MarkIndexed commits extracted text. An empty name keeps the current one.
func (s *Source) MarkIndexed(name, content string) error {
	if s.status != valueobjects.SourceProcessing {
		return pkgerrors.NewConflictError("source " + s.id.String() + " is already " + string(s.status))
	}
	if strings.TrimSpace(name) != "" {
		s.name = name
	}
	s.content = content
	s.status = valueobjects.SourceIndexed
	s.updatedAt = time.Now()
	return nil
}

// MarkFailed records a human-readable failure message as the content
func (s *Source) MarkFailed(message string) error {
	if s.status != valueobjects.SourceProcessing {
		return pkgerrors.NewConflictError("source " + s.id.String() + " is already " + string(s.status))
	}
	s.content = message
	s.status = valueobjects.SourceError
	s.updatedAt = time.Now()
	return nil
}

// Clone returns an independent copy
func (s *Source) Clone() *Source {
	c := *s
	return &c
}
