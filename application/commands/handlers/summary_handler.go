package handlers

import (
	"context"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"go.uber.org/zap"
)

// SummaryHandler regenerates project summaries and audio overviews
type SummaryHandler struct {
	repo   ports.ProjectRepository
	flows  Flows
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewSummaryHandler creates a new handler instance
func NewSummaryHandler(repo ports.ProjectRepository, f Flows, cfg *config.DomainConfig, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{repo: repo, flows: f, cfg: cfg, logger: logger}
}

// RegenerateSummary summarizes the combined content of every source.
// The stored audio overview is dropped with the old summary.
func (h *SummaryHandler) RegenerateSummary(ctx context.Context, cmd commands.RegenerateSummaryCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	project, err := h.repo.Get(ctx, pid)
	if err != nil {
		return err
	}
	if project.SourceCount() == 0 {
		return pkgerrors.NewPreconditionError(config.MsgUploadFirst)
	}

	out, err := h.flows.Summarize(ctx, flows.SummarizeInput{
		Title: project.Name(),
		Text:  project.CombinedContent(),
	})
	if err != nil {
		return flowFailure(config.MsgSummaryFailed, err)
	}

	if _, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		p.ReplaceSummary(out.Summary)
		return nil
	}); err != nil {
		return err
	}

	h.logger.Info("Summary regenerated",
		zap.String("project_id", pid.String()),
		zap.Int("sources", project.SourceCount()),
	)
	return nil
}

// GenerateAudioOverview narrates the current summary
func (h *SummaryHandler) GenerateAudioOverview(ctx context.Context, cmd commands.GenerateAudioOverviewCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	project, err := h.repo.Get(ctx, pid)
	if err != nil {
		return err
	}
	if h.cfg.IsPlaceholderSummary(project.Summary()) {
		return pkgerrors.NewPreconditionError(config.MsgSummaryFirst)
	}

	out, err := h.flows.SynthesizeAudio(ctx, project.Summary())
	if err != nil {
		return flowFailure(config.MsgAudioFailed, err)
	}

	if _, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		return p.SetAudioOverview(out.AudioDataURI)
	}); err != nil {
		return err
	}

	h.logger.Info("Audio overview generated",
		zap.String("project_id", pid.String()),
		zap.Int("size", len(out.AudioDataURI)),
	)
	return nil
}
