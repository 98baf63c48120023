package server

import "net/http"

// HealthHandler serves the liveness probe.
type HealthHandler struct{}

func (h *HealthHandler) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(h.health))
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
