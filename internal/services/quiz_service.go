package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mcala/biaslab/internal/ai"
	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/progress"
	"github.com/mcala/biaslab/internal/repository"
	"github.com/mcala/biaslab/internal/srs"
	"github.com/mcala/biaslab/internal/state"
)

// Question sources.
const (
	SourceGenerated = "generated"
	SourceStatic    = "static"
)

// Quality signals derived from quiz answers: a correct answer counts as a
// solid-but-not-perfect recall, a wrong one as a failure.
const (
	qualityQuizCorrect = 4
	qualityQuizWrong   = 1
)

// Quiz is a generated set of questions served to the client.
type Quiz struct {
	ID        string         `json:"id"`
	Mode      models.Mode    `json:"mode"`
	Source    string         `json:"source"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ConceptID    string   `json:"concept_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// AnswerSubmission reports how the student answered one question.
type AnswerSubmission struct {
	ConceptID string `json:"concept_id"`
	Question  string `json:"question"`
	Correct   bool   `json:"correct"`
}

// AnswerResult is the grading outcome for one submitted answer.
type AnswerResult struct {
	Quality int         `json:"quality"`
	Grade   GradeResult `json:"grade"`
}

// QuizService generates weak-concept-biased quizzes and grades answers.
type QuizService interface {
	GenerateQuiz(ctx context.Context, mode models.Mode, count int) (*Quiz, error)
	SubmitAnswer(ctx context.Context, mode models.Mode, sub AnswerSubmission) (*AnswerResult, error)

	// Prefetch generates a quiz in the background and caches it for the
	// next GenerateQuiz call. Stale prefetches (started before an import
	// or reset) are discarded.
	Prefetch(ctx context.Context, mode models.Mode) error

	// Invalidate drops cached quizzes and marks in-flight prefetches stale.
	Invalidate()
}

type quizService struct {
	catalog   *catalog.Catalog
	manager   *state.Manager
	reviews   repository.ReviewLogRepository
	generator ai.Generator
	threshold int

	generation atomic.Uint64
	mu         sync.Mutex
	cache      map[models.Mode]*Quiz
}

// NewQuizService creates a new QuizService
func NewQuizService(cat *catalog.Catalog, manager *state.Manager, reviews repository.ReviewLogRepository, generator ai.Generator, weakThreshold int) QuizService {
	return &quizService{
		catalog:   cat,
		manager:   manager,
		reviews:   reviews,
		generator: generator,
		threshold: weakThreshold,
		cache:     make(map[models.Mode]*Quiz),
	}
}

func (s *quizService) GenerateQuiz(ctx context.Context, mode models.Mode, count int) (*Quiz, error) {
	log := logger.FromContext(ctx)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}
	if count <= 0 || count > 10 {
		count = 5
	}

	if quiz := s.takeCached(mode); quiz != nil {
		log.Debug("serving prefetched quiz: id=%s", quiz.ID)
		return quiz, nil
	}
	return s.buildQuiz(ctx, mode, count)
}

func (s *quizService) Prefetch(ctx context.Context, mode models.Mode) error {
	log := logger.FromContext(ctx)
	generation := s.generation.Load()

	quiz, err := s.buildQuiz(ctx, mode, 5)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != generation {
		log.Debug("discarding stale prefetched quiz: mode=%s", mode)
		return nil
	}
	s.cache[mode] = quiz
	log.Debug("quiz prefetched: mode=%s, id=%s", mode, quiz.ID)
	return nil
}

func (s *quizService) Invalidate() {
	s.generation.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[models.Mode]*Quiz)
}

func (s *quizService) takeCached(mode models.Mode) *Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz := s.cache[mode]
	delete(s.cache, mode)
	return quiz
}

func (s *quizService) buildQuiz(ctx context.Context, mode models.Mode, count int) (*Quiz, error) {
	log := logger.FromContext(ctx)

	snapshot := s.manager.Snapshot()
	concepts := s.catalog.Concepts(mode)
	weak := srs.PickWeakSet(concepts, snapshot.StoreFor(mode), s.threshold, count)

	generated, err := s.generateQuestions(ctx, mode, weak, count)
	if err != nil {
		// Generation failures are always recoverable: fall back to the
		// static definition-recognition bank.
		log.Warn("quiz generation failed, using static bank: %v", err)
		return &Quiz{
			ID:        uuid.NewString(),
			Mode:      mode,
			Source:    SourceStatic,
			Questions: toQuizQuestions(buildStaticQuestions(concepts, weak, count)),
		}, nil
	}

	return &Quiz{
		ID:        uuid.NewString(),
		Mode:      mode,
		Source:    SourceGenerated,
		Questions: generated,
	}, nil
}

func (s *quizService) generateQuestions(ctx context.Context, mode models.Mode, weak []models.Concept, count int) ([]QuizQuestion, error) {
	raw, err := s.generator.Generate(ctx, ai.QuizSystemPrompt, ai.BuildQuizPrompt(mode, weak, count))
	if err != nil {
		return nil, err
	}
	parsed, err := ai.ParseQuestions(raw)
	if err != nil {
		return nil, errors.NewGenerationError(err)
	}

	// The model occasionally invents concept ids; keep only questions
	// the catalog can actually grade against.
	var valid []ai.GeneratedQuestion
	for _, q := range parsed {
		if _, ok := s.catalog.Get(mode, q.ConceptID); ok {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, errors.NewGenerationError(errPayload("all generated questions referenced unknown concepts"))
	}
	return toQuizQuestions(valid), nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, mode models.Mode, sub AnswerSubmission) (*AnswerResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting answer: mode=%s, concept_id=%s, correct=%t", mode, sub.ConceptID, sub.Correct)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}
	if sub.ConceptID == "" {
		return nil, errors.NewValidationError("concept_id", "cannot be empty")
	}

	quality := qualityQuizWrong
	if sub.Correct {
		quality = qualityQuizCorrect
	}

	now := time.Now()
	var result AnswerResult
	err := s.manager.Update(ctx, func(st *models.AppState) error {
		rec, delta, err := progress.Grade(st, mode, sub.ConceptID, quality, now)
		if err != nil {
			return err
		}
		st.QuizHistory = append(st.QuizHistory, models.QuizResult{
			ID:        uuid.NewString(),
			Mode:      mode,
			ConceptID: sub.ConceptID,
			Question:  sub.Question,
			Correct:   sub.Correct,
			Quality:   quality,
			TakenAt:   now.UnixMilli(),
		})
		result = AnswerResult{
			Quality: quality,
			Grade: GradeResult{
				Record:       rec,
				MasteryDelta: delta,
				XP:           st.XP,
				Streak:       st.Streak,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.reviews.Insert(ctx, models.ReviewLogEntry{
		Mode:         mode,
		ConceptID:    sub.ConceptID,
		Surface:      models.SurfaceQuiz,
		Quality:      quality,
		MasteryAfter: result.Grade.Record.MasteryLevel,
		ReviewedAt:   now,
	}); err != nil {
		log.Warn("failed to record quiz review: %v", err)
	}

	return &result, nil
}

func toQuizQuestions(generated []ai.GeneratedQuestion) []QuizQuestion {
	out := make([]QuizQuestion, len(generated))
	for i, q := range generated {
		out[i] = QuizQuestion{
			ConceptID:    q.ConceptID,
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
	}
	return out
}

type errPayload string

func (e errPayload) Error() string { return string(e) }
