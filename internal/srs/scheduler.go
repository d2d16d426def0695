package srs

import (
	"math"
	"time"

	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/models"
)

// MillisPerDay converts scheduling intervals to epoch-milli offsets.
const MillisPerDay int64 = 86_400_000

// PassThreshold is the lowest quality counted as a successful recall.
const PassThreshold = 3

// Apply computes the next scheduling record from the previous one and a
// quality score using the SM-2 algorithm.
// quality: 0 (total failure) to 5 (perfect recall).
//
// The input record is not mutated; a fresh record is returned. Time is an
// explicit input so review sequences are reproducible in tests.
func Apply(prev models.ProgressRecord, quality int, now time.Time) (models.ProgressRecord, error) {
	if quality < 0 || quality > 5 {
		return models.ProgressRecord{}, errors.NewInvalidQualityError(quality)
	}

	next := prev

	if quality >= PassThreshold {
		// Interval branches on the repetition count before incrementing,
		// matching classic SM-2.
		switch prev.Repetition {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(prev.Interval) * prev.EaseFactor))
		}
		next.Repetition = prev.Repetition + 1
	} else {
		next.Repetition = 0
		next.Interval = 1
	}

	// Ease is recomputed on every review, success or failure.
	q := float64(quality)
	ef := prev.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < models.MinEaseFactor {
		ef = models.MinEaseFactor
	}
	next.EaseFactor = ef

	next.NextReviewAt = now.UnixMilli() + int64(next.Interval)*MillisPerDay
	next.MasteryLevel = clamp(next.Repetition*10+quality*5, 0, 100)
	return next, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
