// File: internal/handlers/chat_handler.go
package handlers

import (
    "encoding/json"
    "net/http"

    "github.com/gorilla/mux"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services"
    "github.com/iyunix/go-visionai/internal/services/parts"
)

type ChatHandler struct {
    ChatService *services.ChatService
}

func NewChatHandler(cs *services.ChatService) *ChatHandler {
    return &ChatHandler{ChatService: cs}
}

// GetUserChats lists the chats that are not on a project.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    chats, err := h.ChatService.ListChats(r.Context(), userID)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    created, err := h.ChatService.CreateChat(r.Context(), userID)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, map[string]string{"chatId": created.ID})
}

// GetChat returns the chat with its messages.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    c, err := h.ChatService.GetChat(r.Context(), userID, mux.Vars(r)["chatId"])
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, c)
}

type addMessageRequest struct {
    Role    string       `json:"role"`
    Message string       `json:"message"`
    Parts   domain.Parts `json:"parts"`
}

func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    var req addMessageRequest
    if !decodeJSON(w, r, &req) {
        return
    }

    msg, err := h.ChatService.AddMessage(r.Context(), userID, mux.Vars(r)["chatId"], req.Role, req.Message, req.Parts)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusCreated, msg)
}

// UpdateChat moves a chat to or off a project and renames it.
// "projectId": null removes the chat from its project.
func (h *ChatHandler) UpdateChat(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    var raw map[string]json.RawMessage
    if !decodeJSON(w, r, &raw) {
        return
    }

    var upd services.ChatUpdate
    if v, ok := raw["projectId"]; ok {
        upd.SetProject = true
        if err := json.Unmarshal(v, &upd.ProjectID); err != nil {
            writeError(w, "projectId must be a string or null", http.StatusBadRequest)
            return
        }
    }
    if v, ok := raw["title"]; ok {
        if err := json.Unmarshal(v, &upd.Title); err != nil {
            writeError(w, "title must be a string", http.StatusBadRequest)
            return
        }
    }

    updated, err := h.ChatService.UpdateChat(r.Context(), userID, mux.Vars(r)["chatId"], upd)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, updated)
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    if err := h.ChatService.DeleteChat(r.Context(), userID, mux.Vars(r)["chatId"]); err != nil {
        writeServiceError(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// ViewChat renders the stored messages as display blocks. ?mode=live keeps
// reasoning blocks expanded while they were still streaming.
func (h *ChatHandler) ViewChat(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    mode := parts.Replay
    if r.URL.Query().Get("mode") == "live" {
        mode = parts.Live
    }
    views, err := h.ChatService.ViewChat(r.Context(), userID, mux.Vars(r)["chatId"], mode)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, views)
}

func (h *ChatHandler) Search(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    results, err := h.ChatService.Search(r.Context(), userID, r.URL.Query().Get("q"))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, results)
}

func (h *ChatHandler) Library(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    items, err := h.ChatService.Library(r.Context(), userID)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, items)
}
