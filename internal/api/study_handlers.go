package api

import (
	"net/http"
	"strconv"

	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
)

func (s *Server) handleNextCard(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	card, err := s.Study.NextCard(r.Context(), mode)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		respondJSON(w, r, http.StatusOK, map[string]any{"card": nil})
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"card": card})
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = parsed
	}

	cards, err := s.Study.ReviewQueue(r.Context(), mode, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"mode":  mode,
		"cards": cards,
	})
}

type gradeRequest struct {
	ConceptID string `json:"concept_id"`
	Quality   int    `json:"quality"`
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())
	log := logger.FromContext(r.Context())

	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Study.GradeConcept(r.Context(), mode, req.ConceptID, req.Quality, models.SurfaceFlashcard)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("flashcard graded: concept_id=%s, quality=%d", req.ConceptID, req.Quality)
	respondJSON(w, r, http.StatusOK, result)
}
