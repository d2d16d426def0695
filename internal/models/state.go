package models

// CurrentSchemaVersion identifies the persisted state layout. Loads merge
// missing fields from the defaults, so bumping this never breaks old blobs.
const CurrentSchemaVersion = 1

// DayFormat is the calendar-day layout used by the streak counter.
const DayFormat = "2006-01-02"

// ChatMessage is one entry of the tutor-chat transcript.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // user or assistant
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// QuizResult records one answered quiz question.
type QuizResult struct {
	ID        string `json:"id"`
	Mode      Mode   `json:"mode"`
	ConceptID string `json:"concept_id"`
	Question  string `json:"question"`
	Correct   bool   `json:"correct"`
	Quality   int    `json:"quality"`
	TakenAt   int64  `json:"taken_at"`
}

// Decision records one choice made inside a generated scenario.
type Decision struct {
	ID         string `json:"id"`
	Mode       Mode   `json:"mode"`
	ConceptID  string `json:"concept_id"`
	Scenario   string `json:"scenario"`
	Choice     string `json:"choice"`
	Sound      bool   `json:"sound"`
	RecordedAt int64  `json:"recorded_at"`
}

// RoadmapItem is one step of the suggested learning path.
type RoadmapItem struct {
	ConceptID string `json:"concept_id"`
	Done      bool   `json:"done"`
}

// Streak counts consecutive calendar days with at least one review.
type Streak struct {
	Count        int    `json:"count"`
	LastStudyDay string `json:"last_study_day"` // DayFormat, empty if never studied
}

// AppState is the full persisted application state. It is tree-shaped
// (no cycles) and owned by a single writer; readers get snapshots.
type AppState struct {
	SchemaVersion int                    `json:"schema_version"`
	Progress      map[Mode]ProgressStore `json:"progress"`
	XP            int                    `json:"xp"`
	Streak        Streak                 `json:"streak"`
	ChatHistory   []ChatMessage          `json:"chat_history"`
	QuizHistory   []QuizResult           `json:"quiz_history"`
	DecisionLog   []Decision             `json:"decision_log"`
	Roadmap       []RoadmapItem          `json:"roadmap"`
}

// DefaultState returns the documented empty state: all collections empty,
// all counters zero, one progress store per mode.
func DefaultState() *AppState {
	return &AppState{
		SchemaVersion: CurrentSchemaVersion,
		Progress: map[Mode]ProgressStore{
			ModePsychology: {},
			ModeLogic:      {},
		},
		ChatHistory: []ChatMessage{},
		QuizHistory: []QuizResult{},
		DecisionLog: []Decision{},
		Roadmap:     []RoadmapItem{},
	}
}

// Clone returns a deep copy of the state.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		SchemaVersion: s.SchemaVersion,
		Progress:      make(map[Mode]ProgressStore, len(s.Progress)),
		XP:            s.XP,
		Streak:        s.Streak,
		ChatHistory:   append([]ChatMessage(nil), s.ChatHistory...),
		QuizHistory:   append([]QuizResult(nil), s.QuizHistory...),
		DecisionLog:   append([]Decision(nil), s.DecisionLog...),
		Roadmap:       append([]RoadmapItem(nil), s.Roadmap...),
	}
	for mode, store := range s.Progress {
		out.Progress[mode] = store.Clone()
	}
	return out
}

// StoreFor returns the progress store for a mode, creating an empty one
// if a loaded blob predates the mode.
func (s *AppState) StoreFor(mode Mode) ProgressStore {
	if s.Progress == nil {
		s.Progress = make(map[Mode]ProgressStore)
	}
	store, ok := s.Progress[mode]
	if !ok {
		store = ProgressStore{}
		s.Progress[mode] = store
	}
	return store
}
