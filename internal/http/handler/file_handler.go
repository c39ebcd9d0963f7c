package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shareport/shareport/internal/http/response"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/service"
)

type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

type registerFileRequest struct {
	Name        string `json:"name"`
	BlobKey     string `json:"blob_key"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

func (h *FileHandler) Register(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req registerFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	file, err := h.files.RegisterFile(r.Context(), service.RegisterFileInput{
		ProjectID:   projectID,
		Name:        req.Name,
		BlobKey:     req.BlobKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if errors.Is(err, repository.ErrProjectNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	observability.Audit(r, "file.registered", "file_id", file.ID, "project_id", projectID)
	response.JSON(w, r, http.StatusCreated, file)
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	result, err := h.files.ListFiles(repository.FileListQuery{
		PageRequest: repository.PageRequest{Page: page, PageSize: pageSize},
		ProjectID:   projectID,
		Name:        r.URL.Query().Get("name"),
	})
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not list files")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	file, err := h.files.File(fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not load file")
		return
	}
	response.JSON(w, r, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	err := h.files.DeleteFile(fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not delete file")
		return
	}
	observability.Audit(r, "file.deleted", "file_id", fileID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

type sharePasswordRequest struct {
	Password string `json:"password"`
}

func (h *FileHandler) SetSharePassword(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	var req sharePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	err := h.files.SetSharePassword(fileID, req.Password)
	if errors.Is(err, repository.ErrFileNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		return
	}
	observability.Audit(r, "file.share_password.set", "file_id", fileID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password_set"})
}

func (h *FileHandler) ClearSharePassword(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "fileID")
	if !ok {
		return
	}
	if err := h.files.ClearSharePassword(fileID); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "could not clear password")
		return
	}
	observability.Audit(r, "file.share_password.cleared", "file_id", fileID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password_cleared"})
}
