// Package synthesis derives annotation text from user-entered step notes
// and the owning profile's accumulated memory. It is not a learning
// system: given identical inputs and seed it produces identical output.
package synthesis

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// StepInputs are the user-entered fields synthesis reads.
type StepInputs struct {
	Explanation    string
	WaitConditions string
	Tips           []string
}

// Empty reports whether there is nothing to synthesize from.
func (in StepInputs) Empty() bool {
	return strings.TrimSpace(in.Explanation) == "" &&
		strings.TrimSpace(in.WaitConditions) == "" &&
		len(in.Tips) == 0
}

// Strategy is the pluggable text-generation backend. The default
// RuleStrategy is seeded and fully deterministic; production deployments
// may swap in the LLM-backed strategy for phrasing.
type Strategy interface {
	DeriveExplanation(in StepInputs, memory []string) string
	ExtractPatterns(in StepInputs) []string
	Summarize(macroName string, explanations []string) string
	ImprovementTips(macroName string, explanations []string) []string
	AssistantReply(input string) string
}

var explanationLeads = []string{
	"Optimized walkthrough: %s.",
	"Refined action plan: %s.",
	"Step guidance: %s.",
	"Recommended approach: %s.",
}

var improvementPool = []string{
	"Add a screenshot to each step for visual verification.",
	"Record wait conditions so playback can detect readiness.",
	"Split long steps into smaller checkpoints.",
	"Capture an audio note describing intent for ambiguous steps.",
	"Re-run synthesis after editing step notes to refresh the learned patterns.",
}

var coachingLines = []string{
	"Try specifying which UI elements the macro should watch.",
	"Remember to add state monitoring while waiting.",
	"Consider attaching a screenshot to this step for a clear visual.",
	"Consider splitting the step into smaller sections so it is easier to edit.",
}

// RuleStrategy is the deterministic default. Phrasing choices come from a
// RNG seeded with the configured seed mixed with a content hash, so output
// depends only on seed and input, never on call order.
type RuleStrategy struct {
	seed int64
}

// NewRuleStrategy creates a rule strategy with the given seed.
func NewRuleStrategy(seed int64) *RuleStrategy {
	return &RuleStrategy{seed: seed}
}

func (s *RuleStrategy) rng(content string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
}

// DeriveExplanation builds the enhanced explanation from the step inputs,
// referencing the most recent memory entry when one exists.
func (s *RuleStrategy) DeriveExplanation(in StepInputs, memory []string) string {
	base := strings.TrimSpace(in.Explanation)
	if base == "" {
		base = strings.TrimSpace(in.WaitConditions)
	}
	if base == "" && len(in.Tips) > 0 {
		base = strings.TrimSpace(in.Tips[0])
	}
	base = strings.TrimSuffix(base, ".")

	rng := s.rng(base)
	var b strings.Builder
	fmt.Fprintf(&b, explanationLeads[rng.Intn(len(explanationLeads))], base)
	if wait := strings.TrimSpace(in.WaitConditions); wait != "" {
		fmt.Fprintf(&b, " Watch for: %s.", strings.TrimSuffix(wait, "."))
	}
	if len(in.Tips) > 0 {
		fmt.Fprintf(&b, " Keep in mind: %s.", strings.Join(in.Tips, "; "))
	}
	if len(memory) > 0 {
		fmt.Fprintf(&b, " Builds on the learned pattern %q.", memory[len(memory)-1])
	}
	return b.String()
}

// ExtractPatterns condenses each non-empty input into a short phrase.
// Non-empty inputs always yield at least one pattern.
func (s *RuleStrategy) ExtractPatterns(in StepInputs) []string {
	var patterns []string
	for _, sentence := range strings.Split(in.Explanation, ".") {
		if c := condense(sentence); c != "" {
			patterns = append(patterns, c)
		}
	}
	if c := condense(in.WaitConditions); c != "" {
		patterns = append(patterns, "wait for "+c)
	}
	for _, tip := range in.Tips {
		if c := condense(tip); c != "" {
			patterns = append(patterns, "tip: "+c)
		}
	}
	return patterns
}

// Summarize aggregates per-step explanations into one descriptive string.
func (s *RuleStrategy) Summarize(macroName string, explanations []string) string {
	if len(explanations) == 0 {
		return fmt.Sprintf("Macro %q has no steps yet.", macroName)
	}
	parts := make([]string, 0, len(explanations))
	for _, e := range explanations {
		if c := condense(e); c != "" {
			parts = append(parts, c)
		}
	}
	return fmt.Sprintf("Macro %q walks through %d steps: %s.",
		macroName, len(explanations), strings.Join(parts, "; "))
}

// ImprovementTips picks a deterministic selection from the tip pool,
// prefixed with content-derived advice when steps lack notes.
func (s *RuleStrategy) ImprovementTips(macroName string, explanations []string) []string {
	var tips []string
	for _, e := range explanations {
		if strings.TrimSpace(e) == "" {
			tips = append(tips, "Describe every step before running the macro analysis.")
			break
		}
	}
	rng := s.rng(macroName + "|" + strings.Join(explanations, "|"))
	start := rng.Intn(len(improvementPool))
	for i := 0; i < 3; i++ {
		tips = append(tips, improvementPool[(start+i)%len(improvementPool)])
	}
	return tips
}

// AssistantReply produces the chat panel's canned reply for an input line.
func (s *RuleStrategy) AssistantReply(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return "I need a bit more detail before I can help."
	}
	rng := s.rng(input)
	return fmt.Sprintf("Understood: %s. %s", input, coachingLines[rng.Intn(len(coachingLines))])
}

// condense reduces text to a short lowercase phrase of at most six words.
func condense(text string) string {
	words := strings.Fields(strings.ToLower(strings.Trim(text, " .!?\t\n")))
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
