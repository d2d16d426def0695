package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcala/biaslab/internal/models"
)

// GeneratedQuestion is the JSON shape quiz generation asks the model for.
type GeneratedQuestion struct {
	ConceptID    string   `json:"concept_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// GeneratedScenario is the JSON shape simulation generation asks for: a
// short everyday situation where the target concept is in play, plus
// choices of which some are sound and some fall for it.
type GeneratedScenario struct {
	ConceptID string           `json:"concept_id"`
	Scenario  string           `json:"scenario"`
	Options   []ScenarioOption `json:"options"`
}

type ScenarioOption struct {
	Text     string `json:"text"`
	Sound    bool   `json:"sound"`
	Feedback string `json:"feedback"`
}

// QuizSystemPrompt frames quiz question generation.
const QuizSystemPrompt = `You are a tutor writing multiple-choice questions that test whether a student can recognize cognitive biases and logical fallacies in realistic situations. Respond with JSON only.`

// ScenarioSystemPrompt frames decision-scenario generation.
const ScenarioSystemPrompt = `You are a tutor writing short interactive decision scenarios that put the student inside a situation where a specific reasoning error is tempting. Respond with JSON only.`

// ChatSystemPrompt frames the streaming tutor dialogue.
const ChatSystemPrompt = `You are a patient tutor helping a student understand cognitive biases and logical fallacies. Use concrete everyday examples, keep answers short, and when the student makes a reasoning error, name it and explain it gently.`

// BuildQuizPrompt asks for count questions biased toward the student's
// weakest concepts.
func BuildQuizPrompt(mode models.Mode, weak []models.Concept, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d multiple-choice questions with 4 options each.\n", count)
	fmt.Fprintf(&sb, "Focus on these %s the student struggles with:\n", subject(mode))
	for _, c := range weak {
		fmt.Fprintf(&sb, "- %s (id: %s): %s\n", c.Name, c.ID, c.Definition)
	}
	sb.WriteString(`Each question describes a realistic situation; the student picks which concept it shows or which response avoids the error.
Respond with a JSON object: {"questions": [{"concept_id", "question", "options", "correct_index", "explanation"}]}.
Use only the concept ids listed above.`)
	return sb.String()
}

// BuildScenarioPrompt asks for one decision scenario targeting a concept.
func BuildScenarioPrompt(mode models.Mode, target models.Concept) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write one second-person decision scenario (3-5 sentences) where %s is tempting.\n", target.Name)
	fmt.Fprintf(&sb, "Concept (id: %s): %s\n", target.ID, target.Definition)
	fmt.Fprintf(&sb, "This is a %s the student has the least mastery of.\n", subjectSingular(mode))
	sb.WriteString(`Offer 3 options the student can choose from; at least one falls for the error and at least one avoids it.
Respond with a JSON object: {"concept_id", "scenario", "options": [{"text", "sound", "feedback"}]}.`)
	return sb.String()
}

// ParseQuestions decodes a quiz generation response.
func ParseQuestions(raw json.RawMessage) ([]GeneratedQuestion, error) {
	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	var valid []GeneratedQuestion
	for _, q := range payload.Questions {
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no usable questions in response")
	}
	return valid, nil
}

// ParseScenario decodes a simulation generation response.
func ParseScenario(raw json.RawMessage) (GeneratedScenario, error) {
	var scenario GeneratedScenario
	if err := json.Unmarshal(raw, &scenario); err != nil {
		return GeneratedScenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if scenario.Scenario == "" || len(scenario.Options) < 2 {
		return GeneratedScenario{}, fmt.Errorf("incomplete scenario in response")
	}
	return scenario, nil
}

func subject(mode models.Mode) string {
	if mode == models.ModeLogic {
		return "logical fallacies"
	}
	return "cognitive biases"
}

func subjectSingular(mode models.Mode) string {
	if mode == models.ModeLogic {
		return "logical fallacy"
	}
	return "cognitive bias"
}
