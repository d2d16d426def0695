package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/progress"
)

func TestGetOrDefault_DoesNotInsert(t *testing.T) {
	store := models.ProgressStore{}
	now := time.UnixMilli(1000)

	rec := progress.GetOrDefault(store, "confirmation-bias", now)

	assert.Equal(t, "confirmation-bias", rec.ConceptID)
	assert.Equal(t, models.InitialInterval, rec.Interval)
	assert.Equal(t, models.InitialEaseFactor, rec.EaseFactor)
	assert.Equal(t, int64(1000), rec.NextReviewAt)
	assert.Empty(t, store, "read must not create an entry")
}

func TestApplyGrade_ReturnsNewSnapshot(t *testing.T) {
	store := models.ProgressStore{
		"anchoring": {ConceptID: "anchoring", Repetition: 1, Interval: 1, EaseFactor: 2.5, MasteryLevel: 35},
	}

	updated, rec, delta, err := progress.ApplyGrade(store, "anchoring", 5, time.UnixMilli(0))

	require.NoError(t, err)
	assert.Equal(t, 6, rec.Interval)
	assert.Equal(t, 2, rec.Repetition)
	assert.Equal(t, rec.MasteryLevel-35, delta)

	// Original snapshot untouched.
	assert.Equal(t, 35, store["anchoring"].MasteryLevel)
	assert.Equal(t, rec, updated["anchoring"])
}

func TestApplyGrade_UnknownConceptStored(t *testing.T) {
	// Foreign keys are not validated at write time; orphan records are kept.
	updated, rec, delta, err := progress.ApplyGrade(models.ProgressStore{}, "not-in-catalog", 4, time.Now())

	require.NoError(t, err)
	assert.Contains(t, updated, "not-in-catalog")
	assert.Equal(t, rec.MasteryLevel, delta, "first grade reports full mastery as delta")
}

func TestApplyGrade_InvalidQuality(t *testing.T) {
	store := models.ProgressStore{}

	updated, _, _, err := progress.ApplyGrade(store, "straw-man", 7, time.Now())

	assert.Error(t, err)
	assert.Empty(t, updated)
}

func TestAdvanceStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		streak   models.Streak
		expected models.Streak
	}{
		{
			name:     "first ever study day",
			streak:   models.Streak{},
			expected: models.Streak{Count: 1, LastStudyDay: "2025-03-10"},
		},
		{
			name:     "same day does not double count",
			streak:   models.Streak{Count: 4, LastStudyDay: "2025-03-10"},
			expected: models.Streak{Count: 4, LastStudyDay: "2025-03-10"},
		},
		{
			name:     "consecutive day increments",
			streak:   models.Streak{Count: 4, LastStudyDay: "2025-03-09"},
			expected: models.Streak{Count: 5, LastStudyDay: "2025-03-10"},
		},
		{
			name:     "gap resets to one",
			streak:   models.Streak{Count: 9, LastStudyDay: "2025-03-07"},
			expected: models.Streak{Count: 1, LastStudyDay: "2025-03-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, progress.AdvanceStreak(tt.streak, now))
		})
	}
}

func TestGrade_UpdatesXPAndStreak(t *testing.T) {
	state := models.DefaultState()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	rec, delta, err := progress.Grade(state, models.ModePsychology, "confirmation-bias", 5, now)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.Repetition)
	assert.Positive(t, delta)
	assert.Equal(t, progress.XPPerReview, state.XP)
	assert.Equal(t, 1, state.Streak.Count)
	assert.Contains(t, state.Progress[models.ModePsychology], "confirmation-bias")

	// A second grade the same day earns XP but not another streak day.
	_, _, err = progress.Grade(state, models.ModePsychology, "anchoring", 3, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2*progress.XPPerReview, state.XP)
	assert.Equal(t, 1, state.Streak.Count)
}

func TestGrade_InvalidQualityLeavesStateUntouched(t *testing.T) {
	state := models.DefaultState()

	_, _, err := progress.Grade(state, models.ModeLogic, "straw-man", -1, time.Now())

	assert.Error(t, err)
	assert.Zero(t, state.XP)
	assert.Empty(t, state.Progress[models.ModeLogic])
}
