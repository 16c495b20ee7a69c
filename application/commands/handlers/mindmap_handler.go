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

// MindMapHandler rebuilds project mind maps
type MindMapHandler struct {
	repo   ports.ProjectRepository
	flows  Flows
	logger *zap.Logger
}

// NewMindMapHandler creates a new handler instance
func NewMindMapHandler(repo ports.ProjectRepository, f Flows, logger *zap.Logger) *MindMapHandler {
	return &MindMapHandler{repo: repo, flows: f, logger: logger}
}

// GenerateMindMap maps the indexed sources of a project. Pending and
// failed sources are left out.
func (h *MindMapHandler) GenerateMindMap(ctx context.Context, cmd commands.GenerateMindMapCommand) error {
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

	indexed := project.IndexedSources()
	in := flows.MindMapInput{Sources: make([]flows.MindMapSource, 0, len(indexed))}
	for _, s := range indexed {
		in.Sources = append(in.Sources, flows.MindMapSource{
			ID:      s.ID().String(),
			Name:    s.Name(),
			Content: s.Content(),
		})
	}

	m, err := h.flows.GenerateMindMap(ctx, in)
	if err != nil {
		return flowFailure(config.MsgMindMapFailed, err)
	}

	if _, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		return p.ReplaceMindMap(m)
	}); err != nil {
		return err
	}

	h.logger.Info("Mind map generated",
		zap.String("project_id", pid.String()),
		zap.Int("sources", len(in.Sources)),
		zap.Int("nodes", len(m.Nodes())),
		zap.Int("edges", len(m.Edges())),
	)
	return nil
}
