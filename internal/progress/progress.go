package progress

import (
	"time"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/srs"
)

// XPPerReview is the fixed experience gain for every grading event.
const XPPerReview = 10

// GetOrDefault returns the stored record for a concept, or the
// default-initial record when none exists. It never inserts; a record is
// only created when a grade is applied.
func GetOrDefault(store models.ProgressStore, conceptID string, now time.Time) models.ProgressRecord {
	if rec, ok := store[conceptID]; ok {
		return rec
	}
	return models.NewProgressRecord(conceptID, now.UnixMilli())
}

// ApplyGrade runs the scheduler against the current record and returns a
// new store snapshot with the entry replaced, along with the new record and
// the mastery delta. The input store is left untouched so concurrent
// readers holding the old snapshot stay safe.
//
// The concept ID is not validated against the catalog: grades for unknown
// IDs are stored as-is.
func ApplyGrade(store models.ProgressStore, conceptID string, quality int, now time.Time) (models.ProgressStore, models.ProgressRecord, int, error) {
	prev := GetOrDefault(store, conceptID, now)

	next, err := srs.Apply(prev, quality, now)
	if err != nil {
		return store, models.ProgressRecord{}, 0, err
	}

	updated := store.Clone()
	updated[conceptID] = next

	delta := next.MasteryLevel
	if _, existed := store[conceptID]; existed {
		delta = next.MasteryLevel - prev.MasteryLevel
	}
	return updated, next, delta, nil
}

// AdvanceStreak advances the daily streak for a grading event at the given
// time: unchanged if today already counted, incremented when the previous
// study day was yesterday, otherwise restarted at 1.
func AdvanceStreak(s models.Streak, now time.Time) models.Streak {
	today := now.Format(models.DayFormat)
	if s.LastStudyDay == today {
		return s
	}
	yesterday := now.AddDate(0, 0, -1).Format(models.DayFormat)
	if s.LastStudyDay == yesterday {
		return models.Streak{Count: s.Count + 1, LastStudyDay: today}
	}
	return models.Streak{Count: 1, LastStudyDay: today}
}

// Grade is the single write entry point for a grading event: it swaps in
// the new progress store for the mode and applies the XP and streak
// updates that accompany every review.
func Grade(state *models.AppState, mode models.Mode, conceptID string, quality int, now time.Time) (models.ProgressRecord, int, error) {
	store := state.StoreFor(mode)
	updated, rec, delta, err := ApplyGrade(store, conceptID, quality, now)
	if err != nil {
		return models.ProgressRecord{}, 0, err
	}
	state.Progress[mode] = updated
	state.XP += XPPerReview
	state.Streak = AdvanceStreak(state.Streak, now)
	return rec, delta, nil
}
