package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status       string `json:"status"`
	Model        string `json:"model"`
	UptimeSec    int64  `json:"uptime_sec"`
	TrackedUsers int    `json:"tracked_users"`
}

// handleHealth reports liveness. The conversation cache is the only
// stateful dependency; a poisoned cache makes the process unhealthy.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// handleStatus reports runtime info: model, uptime, and cache occupancy.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Status:       "ok",
			Model:        g.model,
			UptimeSec:    int64(time.Since(g.started) / time.Second),
			TrackedUsers: g.cache.Users(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
