package handlers

import (
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/pkg/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	base
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(d Deps) *ProjectHandler {
	return &ProjectHandler{base: newBase(d)}
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=200"`
}

// AudioOverviewResponse carries a synthesized audio overview
type AudioOverviewResponse struct {
	ProjectID     string `json:"projectId"`
	AudioOverview string `json:"audioOverview"`
}

// GetWorkspace handles GET /workspace
func (h *ProjectHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	view, err := querybus.Ask[*queries.WorkspaceView](r.Context(), h.queryBus, queries.GetWorkspaceQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	result, err := querybus.Ask[*queries.ListProjectsResult](r.Context(), h.queryBus, queries.ListProjectsQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result)
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	cmd := commands.CreateProjectCommand{
		ProjectID: valueobjects.NewProjectID().String(),
		Name:      req.Name,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}

	h.writeProject(w, r, http.StatusCreated, cmd.ProjectID)
}

// GetProject handles GET /projects/{projectID}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	h.writeProject(w, r, http.StatusOK, chi.URLParam(r, "projectID"))
}

// DeleteProject handles DELETE /projects/{projectID}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteProjectCommand{ProjectID: chi.URLParam(r, "projectID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// SelectProject handles POST /projects/{projectID}/select
func (h *ProjectHandler) SelectProject(w http.ResponseWriter, r *http.Request) {
	cmd := commands.SelectProjectCommand{ProjectID: chi.URLParam(r, "projectID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	h.GetWorkspace(w, r)
}

// RegenerateSummary handles POST /projects/{projectID}/summary
func (h *ProjectHandler) RegenerateSummary(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.commandBus.Send(r.Context(), commands.RegenerateSummaryCommand{ProjectID: projectID}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeProject(w, r, http.StatusOK, projectID)
}

// GenerateAudioOverview handles POST /projects/{projectID}/audio
func (h *ProjectHandler) GenerateAudioOverview(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.commandBus.Send(r.Context(), commands.GenerateAudioOverviewCommand{ProjectID: projectID}); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := querybus.Ask[*queries.ProjectView](r.Context(), h.queryBus, queries.GetProjectQuery{ProjectID: projectID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, AudioOverviewResponse{ProjectID: view.ID, AudioOverview: view.AudioOverview})
}

// GetMindMap handles GET /projects/{projectID}/mindmap
func (h *ProjectHandler) GetMindMap(w http.ResponseWriter, r *http.Request) {
	h.writeMindMap(w, r, chi.URLParam(r, "projectID"))
}

// GenerateMindMap handles POST /projects/{projectID}/mindmap
func (h *ProjectHandler) GenerateMindMap(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.commandBus.Send(r.Context(), commands.GenerateMindMapCommand{ProjectID: projectID}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeMindMap(w, r, projectID)
}

func (h *ProjectHandler) writeProject(w http.ResponseWriter, r *http.Request, status int, projectID string) {
	view, err := querybus.Ask[*queries.ProjectView](r.Context(), h.queryBus, queries.GetProjectQuery{ProjectID: projectID})
	if err != nil {
		h.logger.Debug("Project lookup failed", zap.String("project_id", projectID), zap.Error(err))
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, status, view)
}

func (h *ProjectHandler) writeMindMap(w http.ResponseWriter, r *http.Request, projectID string) {
	view, err := querybus.Ask[*queries.MindMapView](r.Context(), h.queryBus, queries.GetMindMapQuery{ProjectID: projectID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}
