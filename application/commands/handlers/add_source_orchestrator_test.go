package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fileCommand(projectID, sourceID string) commands.AddSourceCommand {
	return commands.AddSourceCommand{
		ProjectID: projectID,
		SourceID:  sourceID,
		Kind:      "file",
		FileName:  "notes.txt",
		MediaType: "text/plain; charset=utf-8",
		Data:      []byte("hello world"),
	}
}

func TestAddSource_FileIndexed(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "Research")
	metrics := observability.NewCollector("test")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, metrics, zap.NewNop())

	f.flows.On("ExtractFromFile", mock.Anything, flows.ExtractFileInput{
		DataURI: flows.EncodeDataURI("text/plain", []byte("hello world")),
	}).Return(flows.ExtractionResult{Content: "hello world"})
	f.flows.On("Summarize", mock.Anything, flows.SummarizeInput{Title: "notes.txt", Text: "hello world"}).
		Return(&flows.SummarizeOutput{Summary: "A greeting."}, nil)

	// Act
	err := o.Handle(context.Background(), fileCommand("proj_a", "src_1"))

	// Assert
	require.NoError(t, err)
	p := f.project(t, pid)
	require.Equal(t, 1, p.SourceCount())
	src := p.Sources()[0]
	assert.Equal(t, valueobjects.SourceIndexed, src.Status())
	assert.Equal(t, "hello world", src.Content())
	assert.Equal(t, "text/plain", src.MediaType())
	assert.Equal(t, 1, src.Page())
	assert.Equal(t, "Summary for notes.txt: A greeting.", p.Summary())
	assert.Empty(t, f.store.Uploading(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourcesIngested.WithLabelValues("file", "indexed")))
	f.flows.AssertExpectations(t)
}

func TestAddSource_URLUsesExtractedTitle(t *testing.T) {
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	f.flows.On("ExtractFromURL", mock.Anything, flows.ExtractURLInput{URL: "https://example.com/post"}).
		Return(flows.ExtractionResult{Name: "A Post", Content: "post body"})
	f.flows.On("Summarize", mock.Anything, flows.SummarizeInput{Title: "A Post", Text: "post body"}).
		Return(&flows.SummarizeOutput{Summary: "About posts."}, nil)

	err := o.Handle(context.Background(), commands.AddSourceCommand{
		ProjectID: "proj_a",
		SourceID:  "src_web",
		Kind:      "website",
		URL:       "https://example.com/post",
	})

	require.NoError(t, err)
	p := f.project(t, pid)
	src := p.Sources()[0]
	assert.Equal(t, "A Post", src.Name())
	assert.Equal(t, "https://example.com/post", src.URL())
	assert.Equal(t, valueobjects.SourceKindWebsite, src.Kind())
	assert.Equal(t, "Summary for A Post: About posts.", p.Summary())
}

func TestAddSource_ExtractionFailure(t *testing.T) {
	tests := []struct {
		name   string
		result flows.ExtractionResult
	}{
		{
			name: "explicit failure",
			result: flows.ExtractionResult{
				Content: flows.SentinelFileUnprocessable,
				Failure: &flows.ExtractionFailure{
					Reason:  flows.FailureFileUnprocessable,
					Message: flows.SentinelFileUnprocessable,
					Cause:   errors.New("model down"),
				},
			},
		},
		{
			name:   "sentinel content",
			result: flows.ExtractionResult{Content: flows.SentinelFileUnprocessable},
		},
		{
			name:   "url sentinel echoed for a file",
			result: flows.ExtractionResult{Content: flows.SentinelURLUnreachable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			pid := f.createProject(t, "proj_a", "Research")
			o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())
			f.flows.On("ExtractFromFile", mock.Anything, mock.Anything).Return(tt.result)

			err := o.Handle(context.Background(), fileCommand("proj_a", "src_1"))

			require.Error(t, err)
			want := "Could not extract text from notes.txt: the file could not be processed."
			assert.Equal(t, want, pkgerrors.GetAppError(err).Message)

			p := f.project(t, pid)
			src := p.Sources()[0]
			assert.Equal(t, valueobjects.SourceError, src.Status())
			assert.Equal(t, want, src.Content())
			assert.Equal(t, f.cfg.PlaceholderSummary, p.Summary())
			f.flows.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
		})
	}
}

func TestAddSource_URLExtractionFailure(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "Research")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())
	f.flows.On("ExtractFromURL", mock.Anything, mock.Anything).
		Return(flows.ExtractionResult{Content: flows.SentinelFileUnprocessable})

	// Act
	err := o.Handle(context.Background(), commands.AddSourceCommand{
		ProjectID: "proj_a",
		SourceID:  "src_web",
		Kind:      "website",
		URL:       "https://example.com/post",
	})

	// Assert
	require.Error(t, err)
	src := f.project(t, pid).Sources()[0]
	assert.Equal(t, valueobjects.SourceError, src.Status())
	assert.Equal(t, "Could not extract text from https://example.com/post: the address could not be reached.", src.Content())
}

func TestAddSource_SummarizeFailureMarksSourceFailed(t *testing.T) {
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "Research")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	f.flows.On("ExtractFromFile", mock.Anything, mock.Anything).Return(flows.ExtractionResult{Content: "text"})
	f.flows.On("Summarize", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	err := o.Handle(context.Background(), fileCommand("proj_a", "src_1"))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsExternal(err))
	src := f.project(t, pid).Sources()[0]
	assert.Equal(t, valueobjects.SourceError, src.Status())
	assert.Equal(t, config.MsgSourceFailed, src.Content())
}

func TestAddSource_RejectsUnsupportedMedia(t *testing.T) {
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "Research")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	cmd := fileCommand("proj_a", "src_1")
	cmd.MediaType = "image/png"

	err := o.Handle(context.Background(), cmd)

	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnsupportedMedia, appErr.Code)
	assert.Equal(t, config.MsgUnsupportedFileType, appErr.Message)
	assert.Zero(t, f.project(t, pid).SourceCount())
	f.flows.AssertNotCalled(t, "ExtractFromFile", mock.Anything, mock.Anything)
}

func TestAddSource_RejectsOversizedFile(t *testing.T) {
	f := newFixture(t)
	f.createProject(t, "proj_a", "Research")
	f.cfg.MaxUploadBytes = 4
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	err := o.Handle(context.Background(), fileCommand("proj_a", "src_1"))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAddSource_TargetsActiveProject(t *testing.T) {
	f := newFixture(t)
	f.createProject(t, "proj_a", "First")
	pid := f.createProject(t, "proj_b", "Second")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	f.flows.On("ExtractFromFile", mock.Anything, mock.Anything).Return(flows.ExtractionResult{Content: "text"})
	f.flows.On("Summarize", mock.Anything, mock.Anything).Return(&flows.SummarizeOutput{Summary: "s"}, nil)

	err := o.Handle(context.Background(), fileCommand("", "src_1"))

	require.NoError(t, err)
	assert.Equal(t, 1, f.project(t, pid).SourceCount())
}

func TestAddSource_NoActiveProject(t *testing.T) {
	f := newFixture(t)
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	err := o.Handle(context.Background(), fileCommand("", "src_1"))

	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypePrecondition, appErr.Type)
	assert.Equal(t, pkgerrors.CodeNoActiveProject, appErr.Code)
	assert.Equal(t, config.MsgNoActiveProject, appErr.Message)
}

func TestAddSource_UnknownProject(t *testing.T) {
	f := newFixture(t)
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	err := o.Handle(context.Background(), fileCommand("proj_missing", "src_1"))

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAddSource_AsyncShowsPlaceholderFirst(t *testing.T) {
	// Arrange
	f := newFixture(t)
	pid := f.createProject(t, "proj_a", "Research")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	release := make(chan struct{})
	f.flows.On("ExtractFromFile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(flows.ExtractionResult{Content: "text"})
	f.flows.On("Summarize", mock.Anything, mock.Anything).Return(&flows.SummarizeOutput{Summary: "s"}, nil)

	cmd := fileCommand("proj_a", "src_1")
	cmd.Async = true

	// Act
	require.NoError(t, o.Handle(context.Background(), cmd))

	// Assert: placeholder visible while extraction is blocked
	src := f.project(t, pid).Sources()[0]
	assert.Equal(t, valueobjects.SourceProcessing, src.Status())
	assert.Equal(t, f.cfg.PlaceholderContent, src.Content())
	assert.Equal(t, 1, f.store.Uploading(context.Background())["proj_a"])

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, o.Wait(ctx))

	assert.Equal(t, valueobjects.SourceIndexed, f.project(t, pid).Sources()[0].Status())
	assert.Empty(t, f.store.Uploading(context.Background()))
}

func TestAddSource_ProjectDeletedDuringIngestion(t *testing.T) {
	f := newFixture(t)
	f.createProject(t, "proj_a", "Research")
	o := NewAddSourceOrchestrator(f.store, f.store, f.flows, f.cfg, nil, zap.NewNop())

	f.flows.On("ExtractFromFile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			_ = f.projects().DeleteProject(context.Background(), commands.DeleteProjectCommand{ProjectID: "proj_a"})
		}).
		Return(flows.ExtractionResult{Content: "text"})
	f.flows.On("Summarize", mock.Anything, mock.Anything).Return(&flows.SummarizeOutput{Summary: "s"}, nil)

	err := o.Handle(context.Background(), fileCommand("proj_a", "src_1"))

	require.Error(t, err)
	assert.Empty(t, f.store.IDs())
	assert.Empty(t, f.store.Uploading(context.Background()))
}

func TestFailureText(t *testing.T) {
	assert.Equal(t, "custom", failureText(&sourceFailure{message: "custom"}))
	assert.Equal(t, config.MsgSourceFailed, failureText(errors.New("boom")))
}

func TestNormalizeMediaType(t *testing.T) {
	assert.Equal(t, "text/plain", normalizeMediaType("text/plain; charset=utf-8"))
	assert.Equal(t, "application/pdf", normalizeMediaType("Application/PDF"))
}
