package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(modeMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/mode/{mode}", s.handleSelectMode)
		r.Get("/concepts", s.handleConcepts)
		r.Get("/concepts/{id}", s.handleConceptDetail)

		r.Get("/study/next", s.handleNextCard)
		r.Get("/study/queue", s.handleReviewQueue)
		r.Post("/study/grade", s.handleGrade)

		r.Post("/quiz", s.handleGenerateQuiz)
		r.Post("/quiz/answer", s.handleSubmitAnswer)

		r.Post("/simulation", s.handleGenerateScenario)
		r.Post("/simulation/decision", s.handleSubmitDecision)

		r.Get("/chat", s.handleChatHistory)
		r.Post("/chat", s.handleChatMessage)

		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/reset", s.handleReset)
	})

	return r
}
