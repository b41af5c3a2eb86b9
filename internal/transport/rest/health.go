package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

type component struct {
	name string
	ping PingFunc
}

// HealthHandler reports readiness of the database and any other registered
// dependency (the role cache when redis is enabled).
type HealthHandler struct {
	components []component
	timeout    time.Duration
}

func NewHealthHandler(db PingFunc) *HealthHandler {
	h := &HealthHandler{timeout: 2 * time.Second}
	if db != nil {
		h.components = append(h.components, component{name: "postgres", ping: db})
	}
	return h
}

// WithComponent adds a named dependency to the readiness check.
func (h *HealthHandler) WithComponent(name string, ping PingFunc) *HealthHandler {
	if ping != nil {
		h.components = append(h.components, component{name: name, ping: ping})
	}
	return h
}

// pingHandler is the liveness probe.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler is the readiness probe.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(h.components)),
	}

	for _, c := range h.components {
		start := time.Now()
		err := c.ping(ctx)

		entry := CheckEntry{
			Status:     HealthHealthy,
			CheckedAt:  time.Now(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
			resp.Status = HealthUnhealthy
		}
		resp.Components[c.name] = entry
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
