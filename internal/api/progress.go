package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/mentor-ia/mentor/internal/app/progress"
	"github.com/mentor-ia/mentor/internal/domain"
)

// ─── Progress API (/api/progress/*) ─────────────────────────────────────────

type profileResponse struct {
	Profile     domain.UserProfile     `json:"profile"`
	Personality domain.PersonalityTier `json:"personality"`
	Message     string                 `json:"message"`
	NextLevelXP int64                  `json:"nextLevelXP"`
	ToNextLevel int64                  `json:"toNextLevel"`
	ProgressPct float64                `json:"progressPct"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := s.progress.GetUserProfile(r.Context())
	writeJSON(w, http.StatusOK, profileResponse{
		Profile:     p,
		Personality: progress.PersonalityFor(p.Level),
		Message:     s.progress.MotivationalMessage(r.Context()),
		NextLevelXP: progress.NextLevelXP(p.Level),
		ToNextLevel: progress.XPToNextLevel(p.Experience),
		ProgressPct: progress.ProgressPct(p.Experience),
	})
}

// --- POST /api/progress/actions ---

type actionRequest struct {
	Kind string `json:"kind" validate:"required"`
}

func (s *Server) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	kind, err := domain.ParseActionKind(req.Kind)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	res, err := s.progress.RecordAction(r.Context(), kind)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- POST /api/progress/streak ---

type streakRequest struct {
	Today string `json:"today" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) handleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	var req streakRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	today := civil.DateOf(s.now())
	if req.Today != "" {
		d, err := civil.ParseDate(req.Today)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		today = d
	}

	res, err := s.progress.UpdateStreak(r.Context(), today)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- GET /api/progress/badges ---

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges := s.progress.Badges(r.Context())
	unlocked := 0
	for _, b := range badges {
		if b.Unlocked {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badges":   badges,
		"unlocked": unlocked,
		"total":    len(badges),
	})
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	b, err := s.progress.Badge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// --- GET /api/progress/personality[?level=N] ---

func (s *Server) handlePersonality(w http.ResponseWriter, r *http.Request) {
	level := s.progress.GetUserProfile(r.Context()).Level
	if q := r.URL.Query().Get("level"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			s.writeError(w, r, http.StatusBadRequest, "level must be a positive integer")
			return
		}
		level = n
	}
	writeJSON(w, http.StatusOK, progress.PersonalityFor(level))
}

// --- DELETE /api/progress ---

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	perr := s.progress.ResetProgress(r.Context())
	lerr := s.library.Reset(r.Context())
	if perr != nil {
		s.writeDomainError(w, r, perr)
		return
	}
	if lerr != nil {
		s.writeDomainError(w, r, lerr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
