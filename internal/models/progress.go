package models

// Scheduling defaults for a concept that has never been reviewed.
const (
	InitialInterval   = 1
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// ProgressRecord holds the SM-2 scheduling state for one concept.
type ProgressRecord struct {
	ConceptID    string  `json:"concept_id"`
	Interval     int     `json:"interval"` // days until the next review
	Repetition   int     `json:"repetition"`
	EaseFactor   float64 `json:"ease_factor"`
	NextReviewAt int64   `json:"next_review_at"` // epoch millis
	MasteryLevel int     `json:"mastery_level"`  // 0..100, display only
}

// NewProgressRecord returns the default-initial record for a concept
// first reviewed at the given time.
func NewProgressRecord(conceptID string, nowMillis int64) ProgressRecord {
	return ProgressRecord{
		ConceptID:    conceptID,
		Interval:     InitialInterval,
		Repetition:   0,
		EaseFactor:   InitialEaseFactor,
		NextReviewAt: nowMillis,
		MasteryLevel: 0,
	}
}

// ProgressStore maps concept IDs to their scheduling records for one mode.
type ProgressStore map[string]ProgressRecord

// Clone returns an independent copy of the store. Callers mutate copies,
// never a store shared with concurrent readers.
func (s ProgressStore) Clone() ProgressStore {
	out := make(ProgressStore, len(s))
	for id, rec := range s {
		out[id] = rec
	}
	return out
}
