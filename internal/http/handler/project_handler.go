package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	project, err := h.projects.Create(req.Name, req.Description)
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	observability.Audit(r, "project.created", "project_id", project.ID)
	response.JSON(w, r, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not list projects")
		return
	}
	response.JSON(w, r, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	project, err := h.projects.Get(projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load project")
		return
	}
	response.JSON(w, r, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	project, err := h.projects.Get(projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load project")
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	project.Name = req.Name
	project.Description = req.Description
	if err := h.projects.Update(project); err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	observability.Audit(r, "project.updated", "project_id", project.ID)
	response.JSON(w, r, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	err := h.projects.Delete(projectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not delete project")
		return
	}
	observability.Audit(r, "project.deleted", "project_id", projectID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
