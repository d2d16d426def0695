package models

import "time"

// Review surfaces: which part of the app produced a grading event.
const (
	SurfaceFlashcard  = "flashcard"
	SurfaceQuiz       = "quiz"
	SurfaceSimulation = "simulation"
)

// ReviewLogEntry is one grading event kept for analytics. The log is an
// audit trail only; the persisted state blob stays authoritative for
// scheduling.
type ReviewLogEntry struct {
	ID           int64     `json:"id"`
	Mode         Mode      `json:"mode"`
	ConceptID    string    `json:"concept_id"`
	Surface      string    `json:"surface"`
	Quality      int       `json:"quality"`
	MasteryAfter int       `json:"mastery_after"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// ReviewFilter narrows review-log queries.
type ReviewFilter struct {
	Mode    Mode
	Surface string
	Since   *time.Time
	Limit   int
}
