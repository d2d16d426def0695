package srs

import (
	"sort"

	"github.com/mcala/biaslab/internal/models"
)

// Session selection queries. All functions are pure reads over a catalog
// slice and a progress store snapshot; concepts without a record are
// treated as never reviewed (mastery 0, due immediately).

// PickLowestMastery returns the concept with the smallest mastery level.
// Ties are broken by catalog order. Returns false when the catalog is empty.
func PickLowestMastery(catalog []models.Concept, store models.ProgressStore) (models.Concept, bool) {
	if len(catalog) == 0 {
		return models.Concept{}, false
	}
	best := catalog[0]
	bestMastery := masteryOf(store, best.ID)
	for _, c := range catalog[1:] {
		if m := masteryOf(store, c.ID); m < bestMastery {
			best = c
			bestMastery = m
		}
	}
	return best, true
}

// BuildReviewQueue returns up to limit concept IDs ordered by next review
// date ascending, most overdue first. Concepts never reviewed sort ahead of
// scheduled ones. The order is deterministic: calling again on an unchanged
// store yields identical output.
func BuildReviewQueue(catalog []models.Concept, store models.ProgressStore, limit int) []string {
	type entry struct {
		id     string
		dueAt  int64
		rank   int // catalog position, the tie breaker
	}
	entries := make([]entry, 0, len(catalog))
	for i, c := range catalog {
		dueAt := int64(0)
		if rec, ok := store[c.ID]; ok {
			dueAt = rec.NextReviewAt
		}
		entries = append(entries, entry{id: c.ID, dueAt: dueAt, rank: i})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].dueAt != entries[j].dueAt {
			return entries[i].dueAt < entries[j].dueAt
		}
		return entries[i].rank < entries[j].rank
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// PickWeakSet returns all concepts with mastery below the threshold. When
// none qualify it falls back to the limit lowest-mastery concepts, so quiz
// generation always has something to target.
func PickWeakSet(catalog []models.Concept, store models.ProgressStore, masteryThreshold, limit int) []models.Concept {
	var weak []models.Concept
	for _, c := range catalog {
		if masteryOf(store, c.ID) < masteryThreshold {
			weak = append(weak, c)
		}
	}
	if len(weak) > 0 {
		return weak
	}

	ranked := append([]models.Concept(nil), catalog...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return masteryOf(store, ranked[i].ID) < masteryOf(store, ranked[j].ID)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func masteryOf(store models.ProgressStore, id string) int {
	if rec, ok := store[id]; ok {
		return rec.MasteryLevel
	}
	return 0
}
