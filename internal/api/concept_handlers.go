package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
)

func (s *Server) handleSelectMode(w http.ResponseWriter, r *http.Request) {
	mode := models.Mode(chi.URLParam(r, "mode"))
	if !mode.Valid() {
		handleError(w, r, errors.NewValidationError("mode", "must be psychology or logic"))
		return
	}

	setModeCookie(w, mode)
	respondJSON(w, r, http.StatusOK, map[string]any{"mode": mode})
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())
	logger.FromContext(r.Context()).Debug("listing concepts: mode=%s", mode)

	respondJSON(w, r, http.StatusOK, map[string]any{
		"mode":     mode,
		"concepts": s.Catalog.Concepts(mode),
	})
}

func (s *Server) handleConceptDetail(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())
	id := chi.URLParam(r, "id")

	concept, ok := s.Catalog.Get(mode, id)
	if !ok {
		handleError(w, r, errors.NewNotFoundError("concept", id))
		return
	}
	respondJSON(w, r, http.StatusOK, concept)
}
