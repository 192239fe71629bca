// File: internal/handlers/routes.go
package handlers

import (
    "net/http"

    "github.com/gorilla/mux"
)

// Router bundles the handlers and the middleware that guard them.
type Router struct {
    Chat     *ChatHandler
    Project  *ProjectHandler
    Generate *GenerateHandler
    Media    *MediaHandler
    Health   *HealthHandler
    Log      *LogHandler

    Auth          func(http.Handler) http.Handler
    GenerateLimit func(http.Handler) http.Handler
}

func (rt *Router) Build() *mux.Router {
    r := mux.NewRouter()

    // --- Public Routes ---
    r.HandleFunc("/health", rt.Health.Health).Methods("GET")
    if rt.Log != nil {
        r.HandleFunc("/api/log", rt.Log.LogFrontendEvent).Methods("POST")
    }

    // --- Protected Routes ---
    api := r.PathPrefix("/api").Subrouter()
    if rt.Auth != nil {
        api.Use(rt.Auth)
    }

    api.HandleFunc("/chats", rt.Chat.GetUserChats).Methods("GET")
    api.HandleFunc("/chats", rt.Chat.CreateChat).Methods("POST")
    api.HandleFunc("/chats/{chatId}", rt.Chat.GetChat).Methods("GET")
    api.HandleFunc("/chats/{chatId}", rt.Chat.UpdateChat).Methods("PATCH")
    api.HandleFunc("/chats/{chatId}", rt.Chat.DeleteChat).Methods("DELETE")
    api.HandleFunc("/chats/{chatId}/messages", rt.Chat.AddMessage).Methods("POST")
    api.HandleFunc("/chats/{chatId}/view", rt.Chat.ViewChat).Methods("GET")

    api.HandleFunc("/projects", rt.Project.GetProjects).Methods("GET")
    api.HandleFunc("/projects", rt.Project.CreateProject).Methods("POST")
    api.HandleFunc("/projects/{projectId}/chats", rt.Project.GetProjectChats).Methods("GET")

    api.HandleFunc("/search", rt.Chat.Search).Methods("GET")
    api.HandleFunc("/library", rt.Chat.Library).Methods("GET")

    api.HandleFunc("/transcribe", rt.Media.Transcribe).Methods("POST")
    api.HandleFunc("/cloudinary/signature", rt.Media.Signature).Methods("GET")

    var generate http.Handler = http.HandlerFunc(rt.Generate.Generate)
    if rt.GenerateLimit != nil {
        generate = rt.GenerateLimit(generate)
    }
    api.Handle("/generate", generate).Methods("POST")

    // --- Custom Error Handlers ---
    r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        writeError(w, "Not found", http.StatusNotFound)
    })
    r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
    })
    return r
}
