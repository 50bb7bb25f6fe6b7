package synthesis

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// ErrEmptyInput indicates a synthesis request with nothing to synthesize
// from. The caller leaves the AI fields unset.
var ErrEmptyInput = errors.New("nothing to synthesize from")

// StepSynthesis is the output of a step analysis run.
type StepSynthesis struct {
	Explanation string
	Patterns    []string
}

// MacroSynthesis is the output of a macro analysis run.
type MacroSynthesis struct {
	Summary         string
	ImprovementTips []string
}

// Engine reads user-entered text plus prior memory and produces derived
// annotations. It never mutates entities; the store applies its results.
type Engine struct {
	strategy Strategy
	logger   *slog.Logger
}

// NewEngine creates an engine over the given strategy.
func NewEngine(strategy Strategy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{strategy: strategy, logger: logger}
}

// EnhanceStep derives the enhanced explanation and learned patterns for a
// step. Fails with ErrEmptyInput when all three input fields are empty.
func (e *Engine) EnhanceStep(step *models.Step, memory []string) (*StepSynthesis, error) {
	in := StepInputs{
		Explanation:    step.UserExplanation,
		WaitConditions: step.UserWaitConditions,
		Tips:           step.UserTips,
	}
	if in.Empty() {
		return nil, fmt.Errorf("step %s: %w", step.ID, ErrEmptyInput)
	}

	out := &StepSynthesis{
		Explanation: e.strategy.DeriveExplanation(in, memory),
		Patterns:    e.strategy.ExtractPatterns(in),
	}
	e.logger.Debug("step synthesis complete", "step", step.ID, "patterns", len(out.Patterns))
	return out, nil
}

// SummarizeMacro aggregates all steps of a macro into a summary plus
// improvement tips. Idempotent given unchanged step content; existing
// values are meant to be overwritten.
func (e *Engine) SummarizeMacro(macro *models.Macro) *MacroSynthesis {
	explanations := make([]string, 0, len(macro.Steps))
	for _, step := range macro.Steps {
		if step.AIEnhancedExplanation != "" {
			explanations = append(explanations, step.AIEnhancedExplanation)
		} else {
			explanations = append(explanations, step.UserExplanation)
		}
	}
	return &MacroSynthesis{
		Summary:         e.strategy.Summarize(macro.Name, explanations),
		ImprovementTips: e.strategy.ImprovementTips(macro.Name, explanations),
	}
}

// Suggest derives macro suggestions from the most recent memory entries.
// With an empty memory the stock suggestions are returned.
func (e *Engine) Suggest(memory []string) []string {
	recent := memory
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) == 0 {
		return []string{
			"Capture the video upload flow including subtitle checks.",
			"Add a macro that reviews comments using OCR and sentiment analysis.",
		}
	}
	suggestions := make([]string, len(recent))
	for i, entry := range recent {
		suggestions[i] = fmt.Sprintf(
			"Macro idea %d: extend the %q technique with automated result verification.",
			i+1, entry)
	}
	return suggestions
}

// AssistantReply produces a canned chat reply for free-form user input.
func (e *Engine) AssistantReply(input string) string {
	return e.strategy.AssistantReply(input)
}
