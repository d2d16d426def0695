package services_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/progress"
	"github.com/mcala/biaslab/internal/services"
	"github.com/mcala/biaslab/internal/testutil/mocks"
)

func generatedScenarioPayload(conceptID string) json.RawMessage {
	data, _ := json.Marshal(map[string]any{
		"concept_id": conceptID,
		"scenario":   "You are about to approve a budget because the vendor opened with a very high quote.",
		"options": []map[string]any{
			{"text": "Negotiate down from their number.", "sound": false, "feedback": "Their number anchored you."},
			{"text": "Price the work independently first.", "sound": true, "feedback": "An independent estimate breaks the anchor."},
			{"text": "Split the difference.", "sound": false, "feedback": "Still relative to the anchor."},
		},
	})
	return data
}

func TestSimulationServiceGenerateScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("targets the lowest-mastery concept", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)

		// Every psychology concept except one gets some mastery.
		require.NoError(t, manager.Update(ctx, func(st *models.AppState) error {
			for _, c := range cat.Concepts(models.ModePsychology) {
				if c.ID == "sunk-cost" {
					continue
				}
				_, _, err := progress.Grade(st, models.ModePsychology, c.ID, 5, time.Now())
				if err != nil {
					return err
				}
			}
			return nil
		}))

		generator := new(mocks.MockGenerator)
		generator.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "sunk-cost")
		})).Return(generatedScenarioPayload("sunk-cost"), nil)

		svc := services.NewSimulationService(cat, manager, reviews, generator)
		scenario, err := svc.GenerateScenario(ctx, models.ModePsychology)
		require.NoError(t, err)

		assert.Equal(t, "sunk-cost", scenario.ConceptID)
		assert.Equal(t, services.SourceGenerated, scenario.Source)
		assert.Len(t, scenario.Options, 3)
		generator.AssertExpectations(t)
	})

	t.Run("generation failure falls back to a static scenario", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		generator := new(mocks.MockGenerator)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		svc := services.NewSimulationService(cat, manager, reviews, generator)
		scenario, err := svc.GenerateScenario(ctx, models.ModeLogic)
		require.NoError(t, err)

		assert.Equal(t, services.SourceStatic, scenario.Source)
		assert.NotEmpty(t, scenario.Scenario)
		require.Len(t, scenario.Options, 2)

		// Exactly one option is sound.
		assert.NotEqual(t, scenario.Options[0].Sound, scenario.Options[1].Sound)
	})

	t.Run("unparseable response falls back to a static scenario", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		generator := new(mocks.MockGenerator)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return(json.RawMessage(`{"scenario": ""}`), nil)

		svc := services.NewSimulationService(cat, manager, reviews, generator)
		scenario, err := svc.GenerateScenario(ctx, models.ModePsychology)
		require.NoError(t, err)
		assert.Equal(t, services.SourceStatic, scenario.Source)
	})
}

func TestSimulationServiceSubmitDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("sound decision grades well and is logged", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewSimulationService(cat, manager, reviews, new(mocks.MockGenerator))

		result, err := svc.SubmitDecision(ctx, models.ModeLogic, services.DecisionSubmission{
			ConceptID: "straw-man",
			Scenario:  "A debate about remote work policy.",
			Choice:    "Restate their actual position before responding.",
			Sound:     true,
		})
		require.NoError(t, err)

		assert.Equal(t, 4, result.Quality)
		assert.Equal(t, 10, result.Grade.XP)

		snap := manager.Snapshot()
		require.Len(t, snap.DecisionLog, 1)
		assert.True(t, snap.DecisionLog[0].Sound)
		assert.Equal(t, "straw-man", snap.DecisionLog[0].ConceptID)
	})

	t.Run("unsound decision still earns partial credit", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewSimulationService(cat, manager, reviews, new(mocks.MockGenerator))

		result, err := svc.SubmitDecision(ctx, models.ModeLogic, services.DecisionSubmission{
			ConceptID: "straw-man",
			Sound:     false,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Quality)
		// Quality below the pass threshold resets scheduling.
		assert.Equal(t, 0, result.Grade.Record.Repetition)
		// But the session still counts toward XP and streak.
		assert.Equal(t, 10, result.Grade.XP)
	})

	t.Run("empty concept id rejected", func(t *testing.T) {
		cat, manager, reviews := newTestDeps(t)
		svc := services.NewSimulationService(cat, manager, reviews, new(mocks.MockGenerator))

		_, err := svc.SubmitDecision(ctx, models.ModeLogic, services.DecisionSubmission{Sound: true})
		require.Error(t, err)
		assert.Empty(t, manager.Snapshot().DecisionLog)
	})
}
