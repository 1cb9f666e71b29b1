package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelasco/textquest/internal/domain"
	"github.com/avelasco/textquest/internal/hunt"
	"github.com/avelasco/textquest/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AdminHandler exposes catalog and session management. Mount it behind the
// API key middleware.
type AdminHandler struct {
	repo   store.Repository
	engine *hunt.Engine
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(repo store.Repository, engine *hunt.Engine) *AdminHandler {
	return &AdminHandler{repo: repo, engine: engine}
}

// RegisterRoutes mounts the admin endpoints on r (typically under /admin).
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/clues", h.createClue)
	r.Get("/clues", h.listClues)
	r.Get("/clues/{id}", h.getClue)
	r.Put("/clues/{id}", h.updateClue)
	r.Delete("/clues/{id}", h.deleteClue)

	r.Get("/sessions", h.listSessions)
	r.Delete("/sessions/{phoneNumber}", h.deleteSession)

	r.Get("/stats", h.getStats)
	r.Get("/games", h.listGames)
	r.Put("/games/{id}", h.updateGame)
	r.Delete("/games/{id}", h.deleteGame)
}

type clueRequest struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint"`
	MediaURL string `json:"mediaUrl"`
}

func (h *AdminHandler) createClue(w http.ResponseWriter, r *http.Request) {
	var req clueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid clue data")
		return
	}
	if req.Type == "" || req.Question == "" || req.Answer == "" {
		Error(w, http.StatusBadRequest, "type, question and answer are required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	clue := &domain.Clue{
		ID:       req.ID,
		Type:     req.Type,
		Question: req.Question,
		Hint:     req.Hint,
		MediaURL: req.MediaURL,
	}
	clue.SetAnswer(req.Answer)

	// Insert directly and let the primary key settle races between
	// concurrent creates with the same id.
	if err := h.repo.CreateClue(r.Context(), clue); err != nil {
		if store.IsConstraintError(err) {
			Error(w, http.StatusBadRequest, "clue with this ID already exists")
			return
		}
		slog.Error("Failed to create clue", "error", err, "clue_id", clue.ID)
		Error(w, http.StatusInternalServerError, "failed to create clue")
		return
	}
	h.reloadCatalog(r)
	JSON(w, http.StatusCreated, clue)
}

func (h *AdminHandler) listClues(w http.ResponseWriter, r *http.Request) {
	clues, err := h.repo.ListClues(r.Context())
	if err != nil {
		slog.Error("Failed to list clues", "error", err)
		Error(w, http.StatusInternalServerError, "failed to retrieve clues")
		return
	}
	if clues == nil {
		clues = []*domain.Clue{}
	}
	JSON(w, http.StatusOK, clues)
}

func (h *AdminHandler) getClue(w http.ResponseWriter, r *http.Request) {
	clue, err := h.repo.GetClue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get clue", "error", err)
		Error(w, http.StatusInternalServerError, "failed to retrieve clue")
		return
	}
	if clue == nil {
		Error(w, http.StatusNotFound, "clue not found")
		return
	}
	JSON(w, http.StatusOK, clue)
}

type clueUpdateRequest struct {
	Type     *string `json:"type"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Hint     *string `json:"hint"`
	MediaURL *string `json:"mediaUrl"`
}

func (h *AdminHandler) updateClue(w http.ResponseWriter, r *http.Request) {
	var req clueUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid clue data")
		return
	}

	clue, err := h.repo.GetClue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get clue", "error", err)
		Error(w, http.StatusInternalServerError, "failed to update clue")
		return
	}
	if clue == nil {
		Error(w, http.StatusNotFound, "clue not found")
		return
	}

	if req.Type != nil {
		clue.Type = *req.Type
	}
	if req.Question != nil {
		clue.Question = *req.Question
	}
	if req.Answer != nil {
		clue.SetAnswer(*req.Answer)
	}
	if req.Hint != nil {
		clue.Hint = *req.Hint
	}
	if req.MediaURL != nil {
		clue.MediaURL = *req.MediaURL
	}

	if err := h.repo.UpdateClue(r.Context(), clue); err != nil {
		slog.Error("Failed to update clue", "error", err, "clue_id", clue.ID)
		Error(w, http.StatusInternalServerError, "failed to update clue")
		return
	}
	h.reloadCatalog(r)
	JSON(w, http.StatusOK, clue)
}

func (h *AdminHandler) deleteClue(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.DeleteClue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to delete clue", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete clue")
		return
	}
	if !deleted {
		Error(w, http.StatusNotFound, "clue not found")
		return
	}
	h.reloadCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	filter := store.SessionFilter{
		PhoneNumber: r.URL.Query().Get("phoneNumber"),
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}

	sessions, err := h.repo.ListSessions(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		Error(w, http.StatusInternalServerError, "failed to retrieve sessions")
		return
	}
	if sessions == nil {
		sessions = []*domain.PlayerSession{}
	}
	JSON(w, http.StatusOK, sessions)
}

func (h *AdminHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.DeleteSession(r.Context(), chi.URLParam(r, "phoneNumber"))
	if err != nil {
		slog.Error("Failed to delete session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	if !deleted {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.SessionStats(r.Context())
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		Error(w, http.StatusInternalServerError, "failed to retrieve statistics")
		return
	}
	JSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.repo.ListGames(r.Context())
	if err != nil {
		slog.Error("Failed to list games", "error", err)
		Error(w, http.StatusInternalServerError, "failed to retrieve games")
		return
	}
	if games == nil {
		games = []*domain.Game{}
	}
	JSON(w, http.StatusOK, games)
}

type gameUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
	EndTime     *time.Time `json:"endTime"`
	MaxPlayers  *int       `json:"maxPlayers"`
}

func (h *AdminHandler) updateGame(w http.ResponseWriter, r *http.Request) {
	var req gameUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid game data")
		return
	}

	game, err := h.repo.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to get game", "error", err)
		Error(w, http.StatusInternalServerError, "failed to update game")
		return
	}
	if game == nil {
		Error(w, http.StatusNotFound, "game not found")
		return
	}

	if req.Name != nil {
		game.Name = *req.Name
	}
	if req.Description != nil {
		game.Description = *req.Description
	}
	if req.Active != nil {
		game.Active = *req.Active
	}
	if req.EndTime != nil {
		game.EndTime = req.EndTime
	}
	if req.MaxPlayers != nil {
		game.MaxPlayers = *req.MaxPlayers
	}

	if err := h.repo.UpdateGame(r.Context(), game); err != nil {
		slog.Error("Failed to update game", "error", err, "game_id", game.ID)
		Error(w, http.StatusInternalServerError, "failed to update game")
		return
	}
	JSON(w, http.StatusOK, game)
}

func (h *AdminHandler) deleteGame(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.DeleteGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Failed to delete game", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete game")
		return
	}
	if !deleted {
		Error(w, http.StatusNotFound, "game not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reloadCatalog refreshes the engine's working set after a catalog
// mutation so running games see the change on their next command.
func (h *AdminHandler) reloadCatalog(r *http.Request) {
	if err := h.engine.InitializeClues(r.Context()); err != nil {
		slog.Error("Failed to reload clue catalog", "error", err)
	}
}
