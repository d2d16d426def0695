package srs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/srs"
)

func testCatalog() []models.Concept {
	return []models.Concept{
		{ID: "confirmation-bias", Name: "Confirmation Bias"},
		{ID: "anchoring", Name: "Anchoring"},
		{ID: "sunk-cost", Name: "Sunk Cost Fallacy"},
		{ID: "availability-heuristic", Name: "Availability Heuristic"},
	}
}

func TestPickLowestMastery(t *testing.T) {
	catalog := testCatalog()
	store := models.ProgressStore{
		"confirmation-bias": {ConceptID: "confirmation-bias", MasteryLevel: 40},
		"anchoring":         {ConceptID: "anchoring", MasteryLevel: 20},
		"sunk-cost":         {ConceptID: "sunk-cost", MasteryLevel: 60},
	}

	// availability-heuristic has no record, so it counts as mastery 0.
	picked, ok := srs.PickLowestMastery(catalog, store)
	require.True(t, ok)
	assert.Equal(t, "availability-heuristic", picked.ID)
}

func TestPickLowestMastery_TieBrokenByCatalogOrder(t *testing.T) {
	catalog := testCatalog()

	picked, ok := srs.PickLowestMastery(catalog, models.ProgressStore{})
	require.True(t, ok)
	assert.Equal(t, "confirmation-bias", picked.ID, "all tied at 0, first catalog entry wins")
}

func TestPickLowestMastery_EmptyCatalog(t *testing.T) {
	_, ok := srs.PickLowestMastery(nil, models.ProgressStore{})
	assert.False(t, ok)
}

func TestBuildReviewQueue_OverdueFirst(t *testing.T) {
	catalog := testCatalog()
	store := models.ProgressStore{
		"confirmation-bias": {ConceptID: "confirmation-bias", NextReviewAt: 3000},
		"anchoring":         {ConceptID: "anchoring", NextReviewAt: 1000},
		"sunk-cost":         {ConceptID: "sunk-cost", NextReviewAt: 2000},
	}

	queue := srs.BuildReviewQueue(catalog, store, 0)

	// Never-reviewed concepts are due immediately and sort first.
	assert.Equal(t, []string{"availability-heuristic", "anchoring", "sunk-cost", "confirmation-bias"}, queue)
}

func TestBuildReviewQueue_RespectsLimit(t *testing.T) {
	queue := srs.BuildReviewQueue(testCatalog(), models.ProgressStore{}, 2)
	assert.Len(t, queue, 2)
}

func TestBuildReviewQueue_Deterministic(t *testing.T) {
	catalog := testCatalog()
	store := models.ProgressStore{
		"anchoring": {ConceptID: "anchoring", NextReviewAt: 500},
		"sunk-cost": {ConceptID: "sunk-cost", NextReviewAt: 500},
	}

	first := srs.BuildReviewQueue(catalog, store, 0)
	second := srs.BuildReviewQueue(catalog, store, 0)

	assert.Equal(t, first, second, "unchanged store must yield identical order")
}

func TestPickWeakSet_BelowThreshold(t *testing.T) {
	catalog := testCatalog()
	store := models.ProgressStore{
		"confirmation-bias":      {ConceptID: "confirmation-bias", MasteryLevel: 80},
		"anchoring":              {ConceptID: "anchoring", MasteryLevel: 30},
		"sunk-cost":              {ConceptID: "sunk-cost", MasteryLevel: 90},
		"availability-heuristic": {ConceptID: "availability-heuristic", MasteryLevel: 45},
	}

	weak := srs.PickWeakSet(catalog, store, 50, 3)

	require.Len(t, weak, 2)
	assert.Equal(t, "anchoring", weak[0].ID)
	assert.Equal(t, "availability-heuristic", weak[1].ID)
}

func TestPickWeakSet_FallbackWhenNoneWeak(t *testing.T) {
	catalog := testCatalog()
	store := models.ProgressStore{}
	for _, c := range catalog {
		store[c.ID] = models.ProgressRecord{ConceptID: c.ID, MasteryLevel: 95}
	}
	store["sunk-cost"] = models.ProgressRecord{ConceptID: "sunk-cost", MasteryLevel: 70}

	weak := srs.PickWeakSet(catalog, store, 50, 2)

	require.Len(t, weak, 2, "falls back to the lowest-mastery concepts")
	assert.Equal(t, "sunk-cost", weak[0].ID)
}
