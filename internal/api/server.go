package api

import (
	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/services"
	"github.com/mcala/biaslab/internal/worker"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	Catalog     *catalog.Catalog
	Study       services.StudyService
	Quizzes     services.QuizService
	Simulations services.SimulationService
	Chat        services.ChatService
	State       services.StateService
	Pool        *worker.Pool
}

// prefetchQuiz queues a background quiz generation for the mode so the
// next quiz request is likely served from cache.
func (s *Server) prefetchQuiz(mode models.Mode) {
	if s.Pool == nil {
		return
	}
	s.Pool.TrySubmit(&worker.PrefetchQuizJob{Quizzes: s.Quizzes, Mode: mode})
}
