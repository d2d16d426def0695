package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
)

//go:embed data/*.json
var dataFS embed.FS

var modeFiles = map[models.Mode]string{
	models.ModePsychology: "data/biases.json",
	models.ModeLogic:      "data/fallacies.json",
}

// Catalog holds the static concept lists, one per study mode. Loaded once
// at startup and read-only afterwards.
type Catalog struct {
	concepts map[models.Mode][]models.Concept
	index    map[models.Mode]map[string]models.Concept
}

// Load parses the embedded concept data and validates ID uniqueness.
func Load() (*Catalog, error) {
	log := logger.Default().WithPrefix("catalog")

	c := &Catalog{
		concepts: make(map[models.Mode][]models.Concept, len(modeFiles)),
		index:    make(map[models.Mode]map[string]models.Concept, len(modeFiles)),
	}

	for mode, file := range modeFiles {
		raw, err := dataFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", file, err)
		}
		var concepts []models.Concept
		if err := json.Unmarshal(raw, &concepts); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", file, err)
		}

		byID := make(map[string]models.Concept, len(concepts))
		for _, concept := range concepts {
			if concept.ID == "" {
				return nil, fmt.Errorf("catalog %s: concept %q has no id", file, concept.Name)
			}
			if _, dup := byID[concept.ID]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate concept id %q", file, concept.ID)
			}
			byID[concept.ID] = concept
		}

		c.concepts[mode] = concepts
		c.index[mode] = byID
		log.Debug("loaded %d concepts for mode %s", len(concepts), mode)
	}

	return c, nil
}

// Concepts returns the concept list for a mode in catalog order.
func (c *Catalog) Concepts(mode models.Mode) []models.Concept {
	return c.concepts[mode]
}

// Get looks up a concept by ID within a mode.
func (c *Catalog) Get(mode models.Mode, id string) (models.Concept, bool) {
	concept, ok := c.index[mode][id]
	return concept, ok
}

// Size returns the number of concepts in a mode's catalog.
func (c *Catalog) Size(mode models.Mode) int {
	return len(c.concepts[mode])
}
