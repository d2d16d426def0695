package api

import (
	"net/http"

	"github.com/mcala/biaslab/internal/services"
)

func (s *Server) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	scenario, err := s.Simulations.GenerateScenario(r.Context(), mode)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, scenario)
}

func (s *Server) handleSubmitDecision(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	var sub services.DecisionSubmission
	if err := decodeJSON(r, &sub); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Simulations.SubmitDecision(r.Context(), mode, sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
