package handlers

import (
	"context"
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// Flows is the set of prompt flows the handlers call
type Flows interface {
	Summarize(ctx context.Context, in flows.SummarizeInput) (*flows.SummarizeOutput, error)
	Answer(ctx context.Context, in flows.AnswerInput) (*flows.AnswerOutput, error)
	GenerateMindMap(ctx context.Context, in flows.MindMapInput) (*aggregates.MindMap, error)
	ExtractFromFile(ctx context.Context, in flows.ExtractFileInput) flows.ExtractionResult
	ExtractFromURL(ctx context.Context, in flows.ExtractURLInput) flows.ExtractionResult
	SynthesizeAudio(ctx context.Context, text string) (*flows.AudioOutput, error)
}

var _ Flows = (*flows.Flows)(nil)

// flowFailure reports a failed flow under a fixed user-facing message.
// The cause stays attached for logs.
func flowFailure(message string, cause error) *pkgerrors.AppError {
	appErr := &pkgerrors.AppError{
		Type:       pkgerrors.ErrorTypeExternal,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusBadGateway,
	}
	if pkgerrors.IsType(cause, pkgerrors.ErrorTypeUnavailable) {
		appErr.Type = pkgerrors.ErrorTypeUnavailable
		appErr.HTTPStatus = http.StatusServiceUnavailable
		appErr.Code = pkgerrors.GetAppError(cause).Code
	}
	return appErr
}

func parseProjectID(id string) (valueobjects.ProjectID, error) {
	pid, err := valueobjects.NewProjectIDFromString(id)
	if err != nil {
		return valueobjects.ProjectID{}, pkgerrors.NewValidationError(err.Error())
	}
	return pid, nil
}

func parseSourceID(id string) (valueobjects.SourceID, error) {
	sid, err := valueobjects.NewSourceIDFromString(id)
	if err != nil {
		return valueobjects.SourceID{}, pkgerrors.NewValidationError(err.Error())
	}
	return sid, nil
}
