package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcala/biaslab/internal/ai"
	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/progress"
	"github.com/mcala/biaslab/internal/repository"
	"github.com/mcala/biaslab/internal/srs"
	"github.com/mcala/biaslab/internal/state"
)

// Decision quality signals: a sound choice is a solid recall, an unsound
// one a partial failure.
const (
	qualityDecisionSound   = 4
	qualityDecisionUnsound = 2
)

// Scenario is one interactive decision situation targeting the student's
// weakest concept.
type Scenario struct {
	ID        string              `json:"id"`
	Mode      models.Mode         `json:"mode"`
	ConceptID string              `json:"concept_id"`
	Scenario  string              `json:"scenario"`
	Options   []ai.ScenarioOption `json:"options"`
	Source    string              `json:"source"`
}

// DecisionSubmission records which option the student picked.
type DecisionSubmission struct {
	ConceptID string `json:"concept_id"`
	Scenario  string `json:"scenario"`
	Choice    string `json:"choice"`
	Sound     bool   `json:"sound"`
}

// DecisionResult is the grading outcome of a submitted decision.
type DecisionResult struct {
	Quality int         `json:"quality"`
	Grade   GradeResult `json:"grade"`
}

// SimulationService generates decision scenarios and grades choices.
type SimulationService interface {
	GenerateScenario(ctx context.Context, mode models.Mode) (*Scenario, error)
	SubmitDecision(ctx context.Context, mode models.Mode, sub DecisionSubmission) (*DecisionResult, error)
}

type simulationService struct {
	catalog   *catalog.Catalog
	manager   *state.Manager
	reviews   repository.ReviewLogRepository
	generator ai.Generator
}

// NewSimulationService creates a new SimulationService
func NewSimulationService(cat *catalog.Catalog, manager *state.Manager, reviews repository.ReviewLogRepository, generator ai.Generator) SimulationService {
	return &simulationService{
		catalog:   cat,
		manager:   manager,
		reviews:   reviews,
		generator: generator,
	}
}

func (s *simulationService) GenerateScenario(ctx context.Context, mode models.Mode) (*Scenario, error) {
	log := logger.FromContext(ctx)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}

	snapshot := s.manager.Snapshot()
	target, ok := srs.PickLowestMastery(s.catalog.Concepts(mode), snapshot.StoreFor(mode))
	if !ok {
		return nil, errors.NewInternalError(fmt.Errorf("empty catalog for mode %s", mode))
	}
	log.Debug("generating scenario: mode=%s, target=%s", mode, target.ID)

	raw, err := s.generator.Generate(ctx, ai.ScenarioSystemPrompt, ai.BuildScenarioPrompt(mode, target))
	if err == nil {
		scenario, parseErr := ai.ParseScenario(raw)
		if parseErr == nil {
			return &Scenario{
				ID:        uuid.NewString(),
				Mode:      mode,
				ConceptID: target.ID,
				Scenario:  scenario.Scenario,
				Options:   scenario.Options,
				Source:    SourceGenerated,
			}, nil
		}
		err = parseErr
	}

	log.Warn("scenario generation failed, using static scenario: %v", err)
	return s.staticScenario(mode, target), nil
}

// staticScenario builds a minimal scenario from the concept's canned
// example so the surface still works without the collaborator.
func (s *simulationService) staticScenario(mode models.Mode, target models.Concept) *Scenario {
	return &Scenario{
		ID:        uuid.NewString(),
		Mode:      mode,
		ConceptID: target.ID,
		Scenario:  fmt.Sprintf("Consider this situation: %s What do you do?", target.Example),
		Options: []ai.ScenarioOption{
			{
				Text:     "Go along with the reasoning as presented.",
				Sound:    false,
				Feedback: fmt.Sprintf("That is exactly %s at work: %s", target.Name, target.Definition),
			},
			{
				Text:     "Pause and ask what evidence would change this conclusion.",
				Sound:    true,
				Feedback: fmt.Sprintf("Right: stepping back is the antidote to %s.", target.Name),
			},
		},
		Source: SourceStatic,
	}
}

func (s *simulationService) SubmitDecision(ctx context.Context, mode models.Mode, sub DecisionSubmission) (*DecisionResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting decision: mode=%s, concept_id=%s, sound=%t", mode, sub.ConceptID, sub.Sound)

	if !mode.Valid() {
		return nil, errors.NewValidationError("mode", "must be psychology or logic")
	}
	if sub.ConceptID == "" {
		return nil, errors.NewValidationError("concept_id", "cannot be empty")
	}

	quality := qualityDecisionUnsound
	if sub.Sound {
		quality = qualityDecisionSound
	}

	now := time.Now()
	var result DecisionResult
	err := s.manager.Update(ctx, func(st *models.AppState) error {
		rec, delta, err := progress.Grade(st, mode, sub.ConceptID, quality, now)
		if err != nil {
			return err
		}
		st.DecisionLog = append(st.DecisionLog, models.Decision{
			ID:         uuid.NewString(),
			Mode:       mode,
			ConceptID:  sub.ConceptID,
			Scenario:   sub.Scenario,
			Choice:     sub.Choice,
			Sound:      sub.Sound,
			RecordedAt: now.UnixMilli(),
		})
		result = DecisionResult{
			Quality: quality,
			Grade: GradeResult{
				Record:       rec,
				MasteryDelta: delta,
				XP:           st.XP,
				Streak:       st.Streak,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.reviews.Insert(ctx, models.ReviewLogEntry{
		Mode:         mode,
		ConceptID:    sub.ConceptID,
		Surface:      models.SurfaceSimulation,
		Quality:      quality,
		MasteryAfter: result.Grade.Record.MasteryLevel,
		ReviewedAt:   now,
	}); err != nil {
		log.Warn("failed to record simulation review: %v", err)
	}

	return &result, nil
}
