package handlers

import (
	"context"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/aggregates"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"go.uber.org/zap"
)

// ProjectHandler handles project lifecycle, selection and source removal
type ProjectHandler struct {
	repo   ports.ProjectRepository
	ws     ports.WorkspaceState
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewProjectHandler creates a new handler instance
func NewProjectHandler(repo ports.ProjectRepository, ws ports.WorkspaceState, cfg *config.DomainConfig, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: repo, ws: ws, cfg: cfg, logger: logger}
}

// CreateProject inserts an empty project and makes it active
func (h *ProjectHandler) CreateProject(ctx context.Context, cmd commands.CreateProjectCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	project, err := aggregates.NewProject(pid, cmd.Name, h.cfg)
	if err != nil {
		return err
	}
	if err := h.repo.Create(ctx, project); err != nil {
		return err
	}
	if err := h.ws.SelectProject(ctx, pid); err != nil {
		return err
	}

	h.logger.Info("Project created",
		zap.String("project_id", pid.String()),
		zap.String("name", project.Name()),
	)
	return nil
}

// DeleteProject removes a project; the store moves the selection
func (h *ProjectHandler) DeleteProject(ctx context.Context, cmd commands.DeleteProjectCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	if err := h.repo.Delete(ctx, pid); err != nil {
		return err
	}
	h.logger.Info("Project deleted", zap.String("project_id", pid.String()))
	return nil
}

// SelectProject makes a project active and clears the active source
func (h *ProjectHandler) SelectProject(ctx context.Context, cmd commands.SelectProjectCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	return h.ws.SelectProject(ctx, pid)
}

// SelectSource points the selection at a source, or clears it
func (h *ProjectHandler) SelectSource(ctx context.Context, cmd commands.SelectSourceCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	var sid valueobjects.SourceID
	if cmd.SourceID != "" {
		if sid, err = parseSourceID(cmd.SourceID); err != nil {
			return err
		}
	}
	return h.ws.SelectSource(ctx, pid, sid)
}

// DeleteSource removes a source and clears it from the selection
func (h *ProjectHandler) DeleteSource(ctx context.Context, cmd commands.DeleteSourceCommand) error {
	pid, err := parseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	sid, err := parseSourceID(cmd.SourceID)
	if err != nil {
		return err
	}

	if _, err := h.repo.Update(ctx, pid, func(p *aggregates.Project) error {
		return p.RemoveSource(sid)
	}); err != nil {
		return err
	}
	h.ws.ClearSourceSelection(ctx, sid)

	h.logger.Info("Source deleted",
		zap.String("project_id", pid.String()),
		zap.String("source_id", sid.String()),
	)
	return nil
}
