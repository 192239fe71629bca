// File: internal/handlers/project_handler.go
package handlers

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/iyunix/go-visionai/internal/services"
)

type ProjectHandler struct {
    ProjectService *services.ProjectService
}

func NewProjectHandler(ps *services.ProjectService) *ProjectHandler {
    return &ProjectHandler{ProjectService: ps}
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    projects, err := h.ProjectService.ListProjects(r.Context(), userID)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    var req struct {
        Title string `json:"title"`
    }
    if !decodeJSON(w, r, &req) {
        return
    }

    created, err := h.ProjectService.CreateProject(r.Context(), userID, req.Title)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) GetProjectChats(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    chats, err := h.ProjectService.ListChats(r.Context(), userID, mux.Vars(r)["projectId"])
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, chats)
}
