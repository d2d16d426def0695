package services

import (
	"fmt"
	"sort"

	"github.com/mcala/biaslab/internal/ai"
	"github.com/mcala/biaslab/internal/models"
)

// buildStaticQuestions derives definition-recognition questions straight
// from the catalog: the definition is the stem, concept names are the
// options. Used whenever generation fails so a quiz is always available.
func buildStaticQuestions(catalog []models.Concept, targets []models.Concept, count int) []ai.GeneratedQuestion {
	if count > len(targets) {
		count = len(targets)
	}

	questions := make([]ai.GeneratedQuestion, 0, count)
	for _, target := range targets[:count] {
		options := distractorNames(catalog, target, 3)
		options = append(options, target.Name)
		sort.Strings(options)

		correct := 0
		for i, name := range options {
			if name == target.Name {
				correct = i
				break
			}
		}

		questions = append(questions, ai.GeneratedQuestion{
			ConceptID:    target.ID,
			Question:     fmt.Sprintf("Which concept does this describe? %q", target.Definition),
			Options:      options,
			CorrectIndex: correct,
			Explanation:  fmt.Sprintf("%s: %s", target.Name, target.Example),
		})
	}
	return questions
}

// distractorNames picks n other concept names, preferring the same
// category so the options are not trivially distinguishable.
func distractorNames(catalog []models.Concept, target models.Concept, n int) []string {
	var sameCategory, others []string
	for _, c := range catalog {
		if c.ID == target.ID {
			continue
		}
		if c.Category == target.Category {
			sameCategory = append(sameCategory, c.Name)
		} else {
			others = append(others, c.Name)
		}
	}

	names := sameCategory
	names = append(names, others...)
	if len(names) > n {
		names = names[:n]
	}
	return names
}
