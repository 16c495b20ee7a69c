package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/domain/config"
	"github.com/Sk16er/Scholar-chat/domain/core/valueobjects"
	"github.com/Sk16er/Scholar-chat/pkg/common"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead leaves room for form boundaries and headers
const multipartOverhead = 1 << 20

// extensionTypes covers the accepted extensions when the client sends no
// usable Content-Type
var extensionTypes = map[string]string{
	".pdf":  config.MediaTypePDF,
	".txt":  config.MediaTypeText,
	".docx": config.MediaTypeDOCX,
}

// SourceHandler handles source HTTP requests
type SourceHandler struct {
	base
	maxUploadBytes int64
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(d Deps, maxUploadBytes int64) *SourceHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &SourceHandler{base: newBase(d), maxUploadBytes: maxUploadBytes}
}

// AddURLSourceRequest represents the JSON body for adding a video or website
type AddURLSourceRequest struct {
	URL  string `json:"url" validate:"required,http_url"`
	Kind string `json:"kind" validate:"required,oneof=video website"`
}

// AddSource handles POST /projects/{projectID}/sources. It answers 202 with
// the placeholder source; ingestion continues in the background.
func (h *SourceHandler) AddSource(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	cmd := commands.AddSourceCommand{
		ProjectID: projectID,
		SourceID:  valueobjects.NewSourceID().String(),
		Async:     true,
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := h.readFile(w, r, &cmd); err != nil {
			h.fail(w, r, err)
			return
		}
	} else {
		var req AddURLSourceRequest
		if err := h.decode(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		cmd.Kind = req.Kind
		cmd.URL = req.URL
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := querybus.Ask[*queries.SourceView](r.Context(), h.queryBus, queries.GetSourceQuery{
		ProjectID: projectID,
		SourceID:  cmd.SourceID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusAccepted, view)
}

// GetSource handles GET /projects/{projectID}/sources/{sourceID}
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	view, err := querybus.Ask[*queries.SourceView](r.Context(), h.queryBus, queries.GetSourceQuery{
		ProjectID: chi.URLParam(r, "projectID"),
		SourceID:  chi.URLParam(r, "sourceID"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}

// DeleteSource handles DELETE /projects/{projectID}/sources/{sourceID}
func (h *SourceHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteSourceCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		SourceID:  chi.URLParam(r, "sourceID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// SelectSource handles POST /projects/{projectID}/sources/{sourceID}/select
func (h *SourceHandler) SelectSource(w http.ResponseWriter, r *http.Request) {
	cmd := commands.SelectSourceCommand{
		ProjectID: chi.URLParam(r, "projectID"),
		SourceID:  chi.URLParam(r, "sourceID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := querybus.Ask[*queries.WorkspaceView](r.Context(), h.queryBus, queries.GetWorkspaceQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}

// readFile reads the "file" part of a multipart upload into cmd
func (h *SourceHandler) readFile(w http.ResponseWriter, r *http.Request, cmd *commands.AddSourceCommand) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return uploadError(err, h.maxUploadBytes)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return pkgerrors.NewValidationError("multipart field \"file\" is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return uploadError(err, h.maxUploadBytes)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return pkgerrors.NewValidationError(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes))
	}

	cmd.Kind = string(valueobjects.SourceKindFile)
	cmd.FileName = filepath.Base(header.Filename)
	cmd.MediaType = detectMediaType(header.Header.Get("Content-Type"), cmd.FileName)
	cmd.Data = data
	return nil
}

func uploadError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.NewValidationError(fmt.Sprintf("file exceeds the %d byte upload limit", limit))
	}
	return pkgerrors.NewValidationError("invalid upload: " + err.Error())
}

// detectMediaType trusts the part's Content-Type unless it is missing or
// generic, then falls back to the file extension
func detectMediaType(declared, fileName string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err == nil && mt != "" && mt != "application/octet-stream" {
		return mt
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return declared
}
