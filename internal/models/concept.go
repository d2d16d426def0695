package models

// Mode selects which concept catalog the app is studying.
type Mode string

const (
	ModePsychology Mode = "psychology" // cognitive biases
	ModeLogic      Mode = "logic"      // logical fallacies
)

// Modes lists every valid study mode in a stable order.
var Modes = []Mode{ModePsychology, ModeLogic}

func (m Mode) Valid() bool {
	return m == ModePsychology || m == ModeLogic
}

// Concept is a single learnable unit: a named bias or fallacy.
// Catalogs are static and read-only at runtime.
type Concept struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Example    string `json:"example"`
}
