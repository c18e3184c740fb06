package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
)

// ─── Library API (/api/library/*) ───────────────────────────────────────────

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	items := s.library.History(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// --- POST /api/library/history ---

type explanationRequest struct {
	Topic   string `json:"topic" validate:"required,max=200"`
	Content string `json:"content"`
}

type explanationResponse struct {
	Item   domain.HistoryItem  `json:"item"`
	Action domain.ActionResult `json:"action"`
	Streak domain.StreakResult `json:"streak"`
	Quota  domain.Quota        `json:"quota"`
}

// handleSaveExplanation charges the daily quota, stores the explanation,
// awards the explanation XP and touches today's streak.
func (s *Server) handleSaveExplanation(w http.ResponseWriter, r *http.Request) {
	var req explanationRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Topic) == "" {
		s.writeDomainError(w, r, domain.ErrEmptyTopic)
		return
	}

	ctx := r.Context()
	quota, err := s.library.Consume(ctx)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	item, err := s.library.SaveExplanation(ctx, req.Topic, req.Content)
	if err != nil {
		if rerr := s.library.Refund(ctx); rerr != nil {
			s.log.Warn("quota not refunded", zap.Error(rerr))
		}
		s.writeDomainError(w, r, err)
		return
	}

	resp := explanationResponse{Item: item, Quota: quota}
	if resp.Action, err = s.progress.RecordAction(ctx, domain.ActionExplanation); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if resp.Streak, err = s.progress.Touch(ctx); err != nil {
		// The explanation and its XP are already durable.
		s.log.Warn("streak not updated", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.library.ClearHistory(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Favorites ---

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs := s.library.Favorites(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"items": favs,
		"count": len(favs),
	})
}

type favoriteRequest struct {
	ID string `json:"id" validate:"required"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	item, ok := s.library.FindHistory(ctx, req.ID)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Sprintf("history item %q not found", req.ID))
		return
	}
	added, err := s.library.AddFavorite(ctx, item)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, map[string]any{"added": false})
		return
	}

	res, err := s.progress.RecordAction(ctx, domain.ActionFavorite)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"added": true, "action": res})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.library.RemoveFavorite(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Stats & quota ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.Stats(r.Context()))
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.Quota(r.Context()))
}
