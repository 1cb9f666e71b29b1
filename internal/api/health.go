package api

import (
	"context"
	"net/http"
	"time"

	"github.com/avelasco/textquest/internal/store"
	"github.com/go-chi/chi/v5"
)

// QueueDepther reports outbound queue backlog for health responses.
type QueueDepther interface {
	Depth() int
}

// HealthHandler reports process and database health.
type HealthHandler struct {
	repo  store.Repository
	queue QueueDepther
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(repo store.Repository, queue QueueDepther) *HealthHandler {
	return &HealthHandler{repo: repo, queue: queue}
}

// RegisterRoutes mounts the health endpoint.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		JSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"database":   "ok",
		"queueDepth": h.queue.Depth(),
	})
}
