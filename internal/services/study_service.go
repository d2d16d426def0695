package services

import (
	"context"
	"time"

	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/progress"
	"github.com/mcala/biaslab/internal/repository"
	"github.com/mcala/biaslab/internal/srs"
	"github.com/mcala/biaslab/internal/state"
)

// Card is one study item: a concept with its current scheduling record.
type Card struct {
	Concept models.Concept        `json:"concept"`
	Record  models.ProgressRecord `json:"record"`
	Due     bool                  `json:"due"`
}

// GradeResult reports the outcome of a grading event.
type GradeResult struct {
	Record       models.ProgressRecord `json:"record"`
	MasteryDelta int                   `json:"mastery_delta"`
	XP           int                   `json:"xp"`
	Streak       models.Streak         `json:"streak"`
}

// StudyService drives the flashcard surface: what to review next and how
// grades feed back into scheduling.
type StudyService interface {
	NextCard(ctx context.Context, mode models.Mode) (*Card, error)
	ReviewQueue(ctx context.Context, mode models.Mode, limit int) ([]Card, error)
	GradeConcept(ctx context.Context, mode models.Mode, conceptID string, quality int, surface string) (*GradeResult, error)
}

type studyService struct {
	catalog    *catalog.Catalog
	manager    *state.Manager
	reviews    repository.ReviewLogRepository
	queueLimit int
}

// NewStudyService creates a new StudyService
func NewStudyService(cat *catalog.Catalog, manager *state.Manager, reviews repository.ReviewLogRepository, queueLimit int) StudyService {
	return &studyService{
		catalog:    cat,
		manager:    manager,
		reviews:    reviews,
		queueLimit: queueLimit,
	}
}

func (s *studyService) NextCard(ctx context.Context, mode models.Mode) (*Card, error) {
	cards, err := s.ReviewQueue(ctx, mode, 1)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return &cards[0], nil
}

func (s *studyService) ReviewQueue(ctx context.Context, mode models.Mode, limit int) ([]Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("building review queue: mode=%s, limit=%d", mode, limit)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}
	if limit <= 0 || limit > s.queueLimit {
		limit = s.queueLimit
	}

	snapshot := s.manager.Snapshot()
	store := snapshot.StoreFor(mode)
	now := time.Now().UnixMilli()

	ids := srs.BuildReviewQueue(s.catalog.Concepts(mode), store, limit)
	cards := make([]Card, 0, len(ids))
	for _, id := range ids {
		concept, ok := s.catalog.Get(mode, id)
		if !ok {
			// Orphan progress records are possible; the queue only serves
			// concepts the catalog still knows.
			continue
		}
		rec := progress.GetOrDefault(store, id, time.Now())
		cards = append(cards, Card{
			Concept: concept,
			Record:  rec,
			Due:     rec.NextReviewAt <= now,
		})
	}

	log.Debug("review queue built: %d cards", len(cards))
	return cards, nil
}

func (s *studyService) GradeConcept(ctx context.Context, mode models.Mode, conceptID string, quality int, surface string) (*GradeResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("grading concept: mode=%s, concept_id=%s, quality=%d", mode, conceptID, quality)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}
	if conceptID == "" {
		return nil, errors.NewValidationError("concept_id", "cannot be empty")
	}
	if quality < 0 || quality > 5 {
		return nil, errors.NewInvalidQualityError(quality)
	}

	now := time.Now()
	var result GradeResult
	err := s.manager.Update(ctx, func(st *models.AppState) error {
		rec, delta, err := progress.Grade(st, mode, conceptID, quality, now)
		if err != nil {
			return err
		}
		result = GradeResult{
			Record:       rec,
			MasteryDelta: delta,
			XP:           st.XP,
			Streak:       st.Streak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("grade applied: interval=%d days, mastery=%d", result.Record.Interval, result.Record.MasteryLevel)

	// The review log is an audit trail; losing an entry must not fail the grade.
	if _, err := s.reviews.Insert(ctx, models.ReviewLogEntry{
		Mode:         mode,
		ConceptID:    conceptID,
		Surface:      surface,
		Quality:      quality,
		MasteryAfter: result.Record.MasteryLevel,
		ReviewedAt:   now,
	}); err != nil {
		log.Warn("failed to record review: %v", err)
	}

	return &result, nil
}
