package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/service"
)

type SettingsHandler struct {
	settings *service.ShareSettingsService
}

func NewSettingsHandler(settings *service.ShareSettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	global, err := h.settings.Global()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load settings")
		return
	}
	response.JSON(w, r, http.StatusOK, global)
}

func (h *SettingsHandler) PutGlobal(w http.ResponseWriter, r *http.Request) {
	var in domain.GlobalShareSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := h.settings.SetGlobal(&in); err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	observability.Audit(r, "settings.global.updated")
	response.JSON(w, r, http.StatusOK, in)
}

func (h *SettingsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	settings, err := h.settings.ProjectSettings(projectID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load settings")
		return
	}
	if settings == nil {
		response.JSON(w, r, http.StatusOK, map[string]any{"project_id": projectID, "inherited": true})
		return
	}
	response.JSON(w, r, http.StatusOK, settings)
}

func (h *SettingsHandler) PutProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var in domain.ProjectShareSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	in.ProjectID = projectID
	if err := h.settings.SetProjectSettings(&in); err != nil {
		if errors.Is(err, service.ErrInvalidSettings) {
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not store settings")
		return
	}
	observability.Audit(r, "settings.project.updated", "project_id", projectID)
	response.JSON(w, r, http.StatusOK, in)
}

func (h *SettingsHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	if err := h.settings.ClearProjectSettings(projectID); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not clear settings")
		return
	}
	observability.Audit(r, "settings.project.cleared", "project_id", projectID)
	response.JSON(w, r, http.StatusOK, map[string]any{"project_id": projectID, "inherited": true})
}

func (h *SettingsHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	settings, err := h.settings.FileSettings(fileID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load settings")
		return
	}
	if settings == nil {
		response.JSON(w, r, http.StatusOK, map[string]any{"file_id": fileID, "inherited": true})
		return
	}
	response.JSON(w, r, http.StatusOK, settings)
}

func (h *SettingsHandler) PutFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	var in domain.FileShareSettings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	in.FileID = fileID
	if err := h.settings.SetFileSettings(&in); err != nil {
		if errors.Is(err, service.ErrInvalidSettings) {
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not store settings")
		return
	}
	observability.Audit(r, "settings.file.updated", "file_id", fileID)
	response.JSON(w, r, http.StatusOK, in)
}

func (h *SettingsHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	if err := h.settings.ClearFileSettings(fileID); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not clear settings")
		return
	}
	observability.Audit(r, "settings.file.cleared", "file_id", fileID)
	response.JSON(w, r, http.StatusOK, map[string]any{"file_id": fileID, "inherited": true})
}

// pathID parses a numeric chi path parameter, answering 400 itself on garbage.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
