package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database pinger
	cache    pinger
	timeout  time.Duration
}

func NewHealthHandler(database pinger, cache pinger) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, timeout: 2 * time.Second}
}

// Health reports 200 while the database answers. A cache outage only
// degrades the report since reads fall back to the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	report := map[string]string{"status": "ok", "database": "up", "cache": "up"}

	if err := h.database.Ping(ctx); err != nil {
		slog.Error("health check: database unreachable", "error", err)
		status = http.StatusServiceUnavailable
		report["status"] = "unavailable"
		report["database"] = "down"
	}

	if h.cache == nil {
		report["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		slog.Warn("health check: cache unreachable", "error", err)
		report["cache"] = "down"
		if status == http.StatusOK {
			report["status"] = "degraded"
		}
	}

	writeJSON(w, status, report)
}
