// Package commands defines the state-changing operations of the notebook.
// Identifiers are assigned by the caller so the result of a command can be
// read back through the query bus.
package commands

import (
	"strings"

	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/utils"
	"github.com/google/uuid"
)

// NewMessageID returns a fresh message identifier
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}

func validate(cmd interface{}) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// CreateProjectCommand creates an empty project and makes it active
type CreateProjectCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
	Name      string `json:"name" validate:"max=200"`
}

func (c CreateProjectCommand) Validate() error { return validate(c) }

// DeleteProjectCommand removes a project
type DeleteProjectCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
}

func (c DeleteProjectCommand) Validate() error { return validate(c) }

// SelectProjectCommand makes a project active
type SelectProjectCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
}

func (c SelectProjectCommand) Validate() error { return validate(c) }

// SelectSourceCommand makes a source active. An empty SourceID clears it.
type SelectSourceCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
	SourceID  string `json:"source_id"`
}

func (c SelectSourceCommand) Validate() error { return validate(c) }

// DeleteSourceCommand removes a source from a project
type DeleteSourceCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
	SourceID  string `json:"source_id" validate:"required"`
}

func (c DeleteSourceCommand) Validate() error { return validate(c) }

// AddSourceCommand ingests a file or an address. An empty ProjectID targets
// the active project. With Async set the command returns once the
// placeholder is visible and ingestion continues in the background.
type AddSourceCommand struct {
	ProjectID string `json:"project_id"`
	SourceID  string `json:"source_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=file video website"`

	// file sources
	FileName  string `json:"file_name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"-"`

	// video and website sources
	URL string `json:"url"`

	Async bool `json:"-"`
}

func (c AddSourceCommand) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	if valueobjects.SourceKind(c.Kind).IsURL() {
		if err := utils.ValidateVar(c.URL, "required,http_url"); err != nil {
			return pkgerrors.NewValidationError("url: " + err.Error())
		}
		return nil
	}
	if strings.TrimSpace(c.FileName) == "" {
		return pkgerrors.NewValidationError("file name is required")
	}
	if len(c.Data) == 0 {
		return pkgerrors.NewValidationError("file is empty")
	}
	return nil
}

// IsFile reports whether the command carries file bytes
func (c AddSourceCommand) IsFile() bool {
	return c.Kind == string(valueobjects.SourceKindFile)
}

// RegenerateSummaryCommand summarizes all sources of a project
type RegenerateSummaryCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
}

func (c RegenerateSummaryCommand) Validate() error { return validate(c) }

// GenerateAudioOverviewCommand narrates the project summary
type GenerateAudioOverviewCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
}

func (c GenerateAudioOverviewCommand) Validate() error { return validate(c) }

// GenerateMindMapCommand rebuilds the project's mind map
type GenerateMindMapCommand struct {
	ProjectID string `json:"project_id" validate:"required"`
}

func (c GenerateMindMapCommand) Validate() error { return validate(c) }

// SendMessageCommand asks a question in a conversation. The assistant
// reply is stored under AssistantMessageID.
type SendMessageCommand struct {
	ProjectID          string `json:"project_id" validate:"required"`
	ConversationID     string `json:"conversation_id"`
	UserMessageID      string `json:"user_message_id" validate:"required"`
	AssistantMessageID string `json:"assistant_message_id" validate:"required,nefield=UserMessageID"`
	Text               string `json:"text" validate:"required"`
}

func (c SendMessageCommand) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	if strings.TrimSpace(c.Text) == "" {
		return pkgerrors.NewValidationError("text is required")
	}
	return nil
}
