package state

import (
	"context"
	"encoding/json"
	"unicode/utf16"

	apperrors "github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/repository"
)

// BlobKey is the fixed key the whole application state is stored under.
const BlobKey = "biaslab.state"

// Tail lengths kept when pruning unbounded collections, in priority order.
const (
	ChatTail     = 20
	QuizTail     = 10
	DecisionTail = 10
)

// Minimum retained lengths used by the aggressive prune pass after a
// quota rejection.
const (
	MinChatTail     = 5
	MinQuizTail     = 2
	MinDecisionTail = 2
)

// Store is the bounded persistence layer: it serializes the full app
// state, keeps the serialized size under a budget by pruning the oldest
// entries of the unbounded logs, and recovers corrupt blobs to defaults.
type Store struct {
	blobs    repository.BlobRepository
	maxBytes int
	log      *logger.Logger
}

func NewStore(blobs repository.BlobRepository, maxBytes int) *Store {
	return &Store{
		blobs:    blobs,
		maxBytes: maxBytes,
		log:      logger.Default().WithPrefix("state"),
	}
}

// EstimateSize approximates the serialized footprint of the state using
// 2 bytes per UTF-16 code unit, the way browser-local stores account for
// strings. This is a soft budget; estimation failures count as zero so a
// broken estimate never starves functionality.
func (s *Store) EstimateSize(state *models.AppState) int {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Warn("size estimation failed, treating as under budget: %v", err)
		return 0
	}
	return 2 * len(utf16.Encode([]rune(string(data))))
}

// Prune returns the state unchanged while it fits the budget; otherwise it
// returns a copy with each unbounded log truncated to its tail length,
// keeping the most recent entries. Pruning is monotonic: repeated calls
// never grow the result.
func (s *Store) Prune(state *models.AppState) *models.AppState {
	if s.EstimateSize(state) < s.maxBytes {
		return state
	}
	s.log.Info("state over budget, pruning: chat=%d, quiz=%d, decisions=%d",
		len(state.ChatHistory), len(state.QuizHistory), len(state.DecisionLog))
	return truncate(state, ChatTail, QuizTail, DecisionTail)
}

func truncate(state *models.AppState, chatTail, quizTail, decisionTail int) *models.AppState {
	pruned := state.Clone()
	pruned.ChatHistory = tail(pruned.ChatHistory, chatTail)
	pruned.QuizHistory = tail(pruned.QuizHistory, quizTail)
	pruned.DecisionLog = tail(pruned.DecisionLog, decisionTail)
	return pruned
}

// tail keeps the last n entries of a chronologically appended slice.
func tail[T any](entries []T, n int) []T {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// Save prunes and writes the state under the fixed key. A quota rejection
// triggers one aggressive prune pass at minimum tail lengths; if the write
// still fails the state for this session is simply not persisted and the
// error is returned for the caller to log.
func (s *Store) Save(ctx context.Context, state *models.AppState) error {
	pruned := s.Prune(state)

	err := s.write(ctx, pruned)
	if !isQuotaError(err) {
		return err
	}

	s.log.Warn("write rejected by storage quota, retrying with aggressive prune")
	pruned = truncate(pruned, MinChatTail, MinQuizTail, MinDecisionTail)
	if err := s.write(ctx, pruned); err != nil {
		s.log.Warn("dropping state write: %v", err)
		return err
	}
	return nil
}

func (s *Store) write(ctx context.Context, state *models.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.blobs.Set(ctx, BlobKey, data)
}

// Load reads the state from the fixed key. Absence or a parse failure
// falls back to the default state; a successfully parsed blob is merged
// with defaults so fields added after the blob was written come back with
// their documented zero values.
func (s *Store) Load(ctx context.Context) *models.AppState {
	data, err := s.blobs.Get(ctx, BlobKey)
	if err != nil {
		s.log.Warn("failed to read persisted state, starting fresh: %v", err)
		return models.DefaultState()
	}
	if data == nil {
		s.log.Info("no persisted state found, starting fresh")
		return models.DefaultState()
	}

	state, err := Decode(data)
	if err != nil {
		s.log.Warn("persisted state unreadable, starting fresh: %v", err)
		return models.DefaultState()
	}
	return state
}

// Delete removes the persisted state.
func (s *Store) Delete(ctx context.Context) error {
	return s.blobs.Delete(ctx, BlobKey)
}

// Decode parses a state blob and applies the forward-compatible default
// merge. Used by Load and by import, so imported blobs go through the
// same validation as persisted ones.
func Decode(data []byte) (*models.AppState, error) {
	state := models.DefaultState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, apperrors.NewPersistenceParseError(err)
	}

	// Fields explicitly null in the blob land as nil; restore defaults.
	if state.Progress == nil {
		state.Progress = models.DefaultState().Progress
	}
	for _, mode := range models.Modes {
		if state.Progress[mode] == nil {
			state.Progress[mode] = models.ProgressStore{}
		}
	}
	if state.ChatHistory == nil {
		state.ChatHistory = []models.ChatMessage{}
	}
	if state.QuizHistory == nil {
		state.QuizHistory = []models.QuizResult{}
	}
	if state.DecisionLog == nil {
		state.DecisionLog = []models.Decision{}
	}
	if state.Roadmap == nil {
		state.Roadmap = []models.RoadmapItem{}
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = models.CurrentSchemaVersion
	}
	return state, nil
}

func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := err.(*apperrors.AppError)
	return ok && appErr.Code == apperrors.ErrCodeQuotaExceeded
}
