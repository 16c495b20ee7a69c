package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/application/sagas"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/entities"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/observability"
	"go.uber.org/zap"
)

// AddSourceOrchestrator runs the ingestion workflow: placeholder, extract,
// summarize, commit. Each state change is its own read-modify-write; the
// flows run with no lock held.
type AddSourceOrchestrator struct {
	repo    ports.ProjectRepository
	ws      ports.WorkspaceState
	flows   Flows
	cfg     *config.DomainConfig
	metrics *observability.Collector
	logger  *zap.Logger

	inflight sync.WaitGroup
}

// NewAddSourceOrchestrator creates a new orchestrator instance
func NewAddSourceOrchestrator(
	repo ports.ProjectRepository,
	ws ports.WorkspaceState,
	f Flows,
	cfg *config.DomainConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *AddSourceOrchestrator {
	return &AddSourceOrchestrator{
		repo:    repo,
		ws:      ws,
		flows:   f,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// ingestion is the state shared by the saga steps
type ingestion struct {
	projectID valueobjects.ProjectID
	sourceID  valueobjects.SourceID
	kind      valueobjects.SourceKind
	subject   string // file name or URL, used in failure messages
	name      string
	dataURI   string
	url       string

	content string
	summary string
}

// sourceFailure carries the message stored on a failed source
type sourceFailure struct {
	message string
	cause   error
}

func (f *sourceFailure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.message, f.cause)
	}
	return f.message
}

func (f *sourceFailure) Unwrap() error { return f.cause }

// Handle validates the request, shows the placeholder and ingests
func (o *AddSourceOrchestrator) Handle(ctx context.Context, cmd commands.AddSourceCommand) error {
	pid, err := o.resolveProject(ctx, cmd.ProjectID)
	if err != nil {
		return err
	}
	sid, err := parseSourceID(cmd.SourceID)
	if err != nil {
		return err
	}

	job := &ingestion{
		projectID: pid,
		sourceID:  sid,
		kind:      valueobjects.SourceKind(cmd.Kind),
	}
	spec := entities.SourceSpec{
		ID:          sid,
		Kind:        job.kind,
		Placeholder: o.cfg.PlaceholderContent,
	}

	if cmd.IsFile() {
		mediaType := normalizeMediaType(cmd.MediaType)
		if !o.cfg.IsAllowedMediaType(mediaType) {
			return pkgerrors.NewValidationError(config.MsgUnsupportedFileType).
				WithCode(pkgerrors.CodeUnsupportedMedia).
				WithDetails(map[string]interface{}{"media_type": cmd.MediaType})
		}
		if o.cfg.MaxUploadBytes > 0 && int64(len(cmd.Data)) > o.cfg.MaxUploadBytes {
			return pkgerrors.NewValidationError(fmt.Sprintf("file exceeds the %d byte upload limit", o.cfg.MaxUploadBytes))
		}
		job.subject = cmd.FileName
		job.dataURI = flows.EncodeDataURI(mediaType, cmd.Data)
		spec.Name = cmd.FileName
		spec.MediaType = mediaType
	} else {
		job.subject = cmd.URL
		job.url = cmd.URL
		spec.Name = cmd.URL
		spec.URL = cmd.URL
	}
	job.name = spec.Name

	placeholder, err := entities.NewPendingSource(spec)
	if err != nil {
		return err
	}

	o.ws.BeginUpload(ctx, pid)
	if _, err := o.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		return p.AddSource(placeholder)
	}); err != nil {
		o.ws.EndUpload(ctx, pid)
		return err
	}

	o.logger.Info("Source accepted",
		zap.String("project_id", pid.String()),
		zap.String("source_id", sid.String()),
		zap.String("kind", cmd.Kind),
		zap.Bool("async", cmd.Async),
	)

	if cmd.Async {
		o.inflight.Add(1)
		go func() {
			defer o.inflight.Done()
			_ = o.ingest(context.WithoutCancel(ctx), job)
		}()
		return nil
	}
	return o.ingest(ctx, job)
}

// Wait blocks until background ingestions finish or ctx is done
func (o *AddSourceOrchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *AddSourceOrchestrator) resolveProject(ctx context.Context, projectID string) (valueobjects.ProjectID, error) {
	if projectID == "" {
		projectID = o.ws.Selection(ctx).ActiveProjectID
	}
	if projectID == "" {
		return valueobjects.ProjectID{}, pkgerrors.NewPreconditionError(config.MsgNoActiveProject).
			WithCode(pkgerrors.CodeNoActiveProject)
	}
	pid, err := parseProjectID(projectID)
	if err != nil {
		return pid, err
	}
	if _, err := o.repo.Get(ctx, pid); err != nil {
		return pid, err
	}
	return pid, nil
}

func (o *AddSourceOrchestrator) ingest(ctx context.Context, job *ingestion) error {
	defer o.ws.EndUpload(ctx, job.projectID)

	saga := sagas.NewSaga("add_source", o.logger).
		With(
			zap.String("project_id", job.projectID.String()),
			zap.String("source_id", job.sourceID.String()),
		).
		AddStep(sagas.SagaStep{Name: "extract", Execute: func(ctx context.Context) error {
			return o.extract(ctx, job)
		}}).
		AddStep(sagas.SagaStep{Name: "summarize", Execute: func(ctx context.Context) error {
			out, err := o.flows.Summarize(ctx, flows.SummarizeInput{Title: job.name, Text: job.content})
			if err != nil {
				return &sourceFailure{message: config.MsgSourceFailed, cause: err}
			}
			job.summary = out.Summary
			return nil
		}}).
		AddStep(sagas.SagaStep{Name: "commit", Execute: func(ctx context.Context) error {
			_, err := o.repo.Update(ctx, job.projectID, func(p *aggregates.Project) error {
				src, err := p.MarkSourceIndexed(job.sourceID, job.name, job.content)
				if err != nil {
					return err
				}
				p.ApplySourceSummary(src.Name(), job.summary)
				return nil
			})
			return err
		}}).
		OnFailure(func(ctx context.Context, step string, err error) {
			o.markFailed(ctx, job, failureText(err))
		})

	err := saga.Execute(ctx)
	o.record(job.kind, err)
	if err != nil {
		return flowFailure(failureText(err), err)
	}

	o.logger.Info("Source indexed",
		zap.String("project_id", job.projectID.String()),
		zap.String("source_id", job.sourceID.String()),
		zap.String("name", job.name),
		zap.Int("content_length", len(job.content)),
	)
	return nil
}

func (o *AddSourceOrchestrator) extract(ctx context.Context, job *ingestion) error {
	var result flows.ExtractionResult
	reason := flows.FailureFileUnprocessable
	if job.kind.IsURL() {
		result = o.flows.ExtractFromURL(ctx, flows.ExtractURLInput{URL: job.url})
		reason = flows.FailureURLUnreachable
	} else {
		result = o.flows.ExtractFromFile(ctx, flows.ExtractFileInput{DataURI: job.dataURI})
	}

	// the message follows the source kind, whichever sentinel the model echoed
	if result.Failed() {
		var cause error
		if result.Failure != nil {
			cause = result.Failure
		}
		return &sourceFailure{message: flows.FailureMessageFor(reason, job.subject), cause: cause}
	}

	if name := strings.TrimSpace(result.Name); name != "" {
		job.name = name
	}
	job.content = result.Content
	return nil
}

func (o *AddSourceOrchestrator) markFailed(ctx context.Context, job *ingestion, message string) {
	_, err := o.repo.Update(ctx, job.projectID, func(p *aggregates.Project) error {
		return p.MarkSourceFailed(job.sourceID, message)
	})
	if err != nil {
		// the source or project may have been deleted meanwhile
		o.logger.Debug("Could not mark source failed",
			zap.String("project_id", job.projectID.String()),
			zap.String("source_id", job.sourceID.String()),
			zap.Error(err),
		)
	}
}

func (o *AddSourceOrchestrator) record(kind valueobjects.SourceKind, err error) {
	if o.metrics == nil {
		return
	}
	status := string(valueobjects.SourceIndexed)
	if err != nil {
		status = string(valueobjects.SourceError)
	}
	o.metrics.SourcesIngested.WithLabelValues(string(kind), status).Inc()
}

// failureText picks the message stored on a failed source
func failureText(err error) string {
	var sf *sourceFailure
	if errors.As(err, &sf) && sf.message != "" {
		return sf.message
	}
	return config.MsgSourceFailed
}

func normalizeMediaType(mediaType string) string {
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
