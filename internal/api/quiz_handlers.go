package api

import (
	"net/http"

	"github.com/mcala/biaslab/internal/services"
)

type quizRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	var req quizRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	quiz, err := s.Quizzes.GenerateQuiz(r.Context(), mode, req.Count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, quiz)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	mode := modeFromContext(r.Context())

	var sub services.AnswerSubmission
	if err := decodeJSON(r, &sub); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Quizzes.SubmitAnswer(r.Context(), mode, sub)
	if err != nil {
		handleError(w, r, err)
		return
	}

	// Warm the cache for the next quiz while the student reviews feedback.
	s.prefetchQuiz(mode)
	respondJSON(w, r, http.StatusOK, result)
}
