package worker

import (
	"context"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/services"
)

// PrefetchQuizJob generates a quiz for a mode ahead of demand so the next
// quiz request is served from cache instead of waiting on the model.
type PrefetchQuizJob struct {
	Quizzes services.QuizService
	Mode    models.Mode
}

func (j *PrefetchQuizJob) Name() string { return "prefetch_quiz" }

func (j *PrefetchQuizJob) Run(ctx context.Context) error {
	return j.Quizzes.Prefetch(ctx, j.Mode)
}
