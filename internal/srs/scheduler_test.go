package srs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/srs"
)

func TestApply_FirstSuccessfulReview(t *testing.T) {
	now := time.UnixMilli(0)
	rec := models.NewProgressRecord("confirmation-bias", now.UnixMilli())

	next, err := srs.Apply(rec, 5, now)

	require.NoError(t, err)
	assert.Equal(t, 1, next.Interval, "first successful rep keeps a 1-day interval")
	assert.Equal(t, 1, next.Repetition)
	assert.Equal(t, int64(86400000), next.NextReviewAt)
	assert.Greater(t, next.EaseFactor, rec.EaseFactor, "perfect recall should raise ease")
}

func TestApply_IntervalProgression(t *testing.T) {
	tests := []struct {
		name       string
		repetition int
		interval   int
		easeFactor float64
		quality    int
		expected   int
	}{
		{
			name:       "second success jumps to 6 days",
			repetition: 1,
			interval:   1,
			easeFactor: 2.5,
			quality:    5,
			expected:   6,
		},
		{
			name:       "third success multiplies by ease factor",
			repetition: 2,
			interval:   6,
			easeFactor: 2.6,
			quality:    5,
			expected:   16, // round(6 * 2.6)
		},
		{
			name:       "borderline pass still grows",
			repetition: 2,
			interval:   10,
			easeFactor: 2.5,
			quality:    3,
			expected:   25,
		},
		{
			name:       "failure resets to one day",
			repetition: 4,
			interval:   30,
			easeFactor: 2.5,
			quality:    2,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.ProgressRecord{
				ConceptID:  "anchoring",
				Repetition: tt.repetition,
				Interval:   tt.interval,
				EaseFactor: tt.easeFactor,
			}

			next, err := srs.Apply(rec, tt.quality, time.Now())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, next.Interval)
		})
	}
}

func TestApply_FailureResetsRepetition(t *testing.T) {
	rec := models.ProgressRecord{
		ConceptID:  "sunk-cost",
		Repetition: 5,
		Interval:   42,
		EaseFactor: 2.2,
	}

	next, err := srs.Apply(rec, 2, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 0, next.Repetition)
	assert.Equal(t, 1, next.Interval)
	assert.Less(t, next.EaseFactor, rec.EaseFactor, "ease still drops on failure")
}

func TestApply_EaseFactorFloor(t *testing.T) {
	rec := models.ProgressRecord{
		ConceptID:  "straw-man",
		EaseFactor: models.InitialEaseFactor,
		Interval:   1,
	}

	// Ease must never drop below 1.3 no matter how many failures pile up.
	var err error
	for i := 0; i < 20; i++ {
		rec, err = srs.Apply(rec, 0, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.EaseFactor, models.MinEaseFactor)
	}
	assert.Equal(t, models.MinEaseFactor, rec.EaseFactor)
}

func TestApply_MasteryClamped(t *testing.T) {
	for quality := 0; quality <= 5; quality++ {
		for repetition := 0; repetition <= 15; repetition++ {
			rec := models.ProgressRecord{
				ConceptID:  "availability-heuristic",
				Repetition: repetition,
				Interval:   1,
				EaseFactor: models.InitialEaseFactor,
			}

			next, err := srs.Apply(rec, quality, time.Now())

			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.MasteryLevel, 0)
			assert.LessOrEqual(t, next.MasteryLevel, 100)
		}
	}
}

func TestApply_RejectsOutOfRangeQuality(t *testing.T) {
	rec := models.NewProgressRecord("ad-hominem", 0)

	for _, quality := range []int{-1, 6, 100} {
		_, err := srs.Apply(rec, quality, time.Now())
		assert.Error(t, err, "quality %d should be rejected, not clamped", quality)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rec := models.ProgressRecord{
		ConceptID:  "hindsight-bias",
		Repetition: 3,
		Interval:   14,
		EaseFactor: 2.4,
	}
	before := rec

	_, err := srs.Apply(rec, 5, time.Now())

	require.NoError(t, err)
	assert.Equal(t, before, rec)
}

func TestApply_EndToEndScenario(t *testing.T) {
	t0 := time.UnixMilli(0)
	rec := models.NewProgressRecord("confirmation-bias", t0.UnixMilli())

	rec, err := srs.Apply(rec, 5, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Interval)
	assert.Equal(t, 1, rec.Repetition)
	assert.Equal(t, int64(86400000), rec.NextReviewAt)

	t1 := time.UnixMilli(86400000)
	rec, err = srs.Apply(rec, 5, t1)
	require.NoError(t, err)
	assert.Equal(t, 6, rec.Interval)
	assert.Equal(t, 2, rec.Repetition)

	t2 := time.UnixMilli(7 * 86400000)
	rec, err = srs.Apply(rec, 1, t2)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Interval)
	assert.Equal(t, 0, rec.Repetition)
}
