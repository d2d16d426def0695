package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/services"
)

func TestStudyServiceReviewQueue(t *testing.T) {
	cat, manager, reviews := newTestDeps(t)
	svc := services.NewStudyService(cat, manager, reviews, 20)
	ctx := context.Background()

	t.Run("fresh state serves cards in catalog order", func(t *testing.T) {
		cards, err := svc.ReviewQueue(ctx, models.ModePsychology, 5)
		require.NoError(t, err)
		require.Len(t, cards, 5)

		assert.Equal(t, cat.Concepts(models.ModePsychology)[0].ID, cards[0].Concept.ID)
		for _, card := range cards {
			assert.True(t, card.Due)
			assert.Equal(t, 0, card.Record.Repetition)
		}
	})

	t.Run("invalid mode rejected", func(t *testing.T) {
		_, err := svc.ReviewQueue(ctx, "astrology", 5)
		require.Error(t, err)
	})

	t.Run("limit falls back to configured maximum", func(t *testing.T) {
		cards, err := svc.ReviewQueue(ctx, models.ModeLogic, 0)
		require.NoError(t, err)
		assert.Len(t, cards, cat.Size(models.ModeLogic))
	})
}

func TestStudyServiceGradeConcept(t *testing.T) {
	ctx := context.Background()

	t.Run("grade updates scheduling and profile", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewStudyService(cat, manager, reviews, 20)

		result, err := svc.GradeConcept(ctx, models.ModePsychology, "confirmation-bias", 5, models.SurfaceFlashcard)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Record.Repetition)
		assert.Equal(t, 1, result.Record.Interval)
		assert.Equal(t, 10, result.XP)
		assert.Equal(t, 1, result.Streak.Count)
		assert.Equal(t, 35, result.Record.MasteryLevel)

		snap := manager.Snapshot()
		assert.Equal(t, result.Record, snap.Progress[models.ModePsychology]["confirmation-bias"])
	})

	t.Run("graded concept moves to the back of the queue", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewStudyService(cat, manager, reviews, 20)

		first, err := svc.NextCard(ctx, models.ModePsychology)
		require.NoError(t, err)
		_, err = svc.GradeConcept(ctx, models.ModePsychology, first.Concept.ID, 5, models.SurfaceFlashcard)
		require.NoError(t, err)

		next, err := svc.NextCard(ctx, models.ModePsychology)
		require.NoError(t, err)
		assert.NotEqual(t, first.Concept.ID, next.Concept.ID)
	})

	t.Run("out-of-range quality rejected without touching state", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewStudyService(cat, manager, reviews, 20)

		_, err := svc.GradeConcept(ctx, models.ModePsychology, "anchoring", 6, models.SurfaceFlashcard)
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidQuality, appErr.Code)
		assert.Equal(t, 0, manager.Snapshot().XP)
	})

	t.Run("grade is recorded in the review log", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewStudyService(cat, manager, reviews, 20)

		_, err := svc.GradeConcept(ctx, models.ModeLogic, "ad-hominem", 3, models.SurfaceFlashcard)
		require.NoError(t, err)

		reviews.AssertCalled(t, "Insert", mock.Anything, mock.MatchedBy(func(e models.ReviewLogEntry) bool {
			return e.ConceptID == "ad-hominem" &&
				e.Surface == models.SurfaceFlashcard &&
				e.Quality == 3 &&
				time.Since(e.ReviewedAt) < time.Minute
		}))
	})

	t.Run("review log failure does not fail the grade", func(t *testing.T) {
		cat, manager, _ := newTestDeps(t)
		reviews := newFailingReviewLog()
		svc := services.NewStudyService(cat, manager, reviews, 20)

		result, err := svc.GradeConcept(ctx, models.ModePsychology, "anchoring", 4, models.SurfaceFlashcard)
		require.NoError(t, err)
		assert.Equal(t, 10, result.XP)
	})
}
