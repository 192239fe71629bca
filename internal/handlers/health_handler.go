// File: internal/handlers/health_handler.go
package handlers

import (
    "net/http"

    "github.com/iyunix/go-visionai/internal/services/ai"
)

type HealthHandler struct {
    Provider ai.Provider
}

func NewHealthHandler(p ai.Provider) *HealthHandler {
    return &HealthHandler{Provider: p}
}

// Health reports liveness and whether the model endpoint is configured.
// It never calls out to the model.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
    resp := map[string]interface{}{"status": "ok"}
    if h.Provider != nil {
        st := h.Provider.GetStatus(r.Context())
        resp["model"] = map[string]interface{}{
            "healthy": st.IsHealthy,
            "model":   st.Model,
            "keys":    st.Keys,
            "message": st.Message,
        }
    }
    writeJSON(w, http.StatusOK, resp)
}
