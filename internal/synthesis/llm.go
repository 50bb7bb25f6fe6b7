package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/macrobot-go/internal/config"
)

// llmTimeout bounds a single generation call so synthesis never hangs the
// triggering user action.
const llmTimeout = 30 * time.Second

// LLMStrategy phrases explanations, summaries, tips, and chat replies with
// a language model. Pattern extraction stays rule-based: patterns feed the
// profile memory and must be reproducible. Every generation failure falls
// back to the deterministic rule strategy, so synthesis never fails on
// model trouble.
type LLMStrategy struct {
	model    llms.Model
	fallback *RuleStrategy
	logger   *slog.Logger
}

// NewStrategy builds the strategy selected by configuration: the seeded
// rule strategy by default, an LLM-backed one for ollama/openai providers.
func NewStrategy(cfg config.Config, logger *slog.Logger) (Strategy, error) {
	if cfg.SynthProvider == config.ProviderRule || cfg.SynthProvider == "" {
		return NewRuleStrategy(cfg.SynthSeed), nil
	}
	return NewLLMStrategy(cfg, logger)
}

// NewLLMStrategy creates an LLM-backed strategy from configuration.
func NewLLMStrategy(cfg config.Config, logger *slog.Logger) (*LLMStrategy, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var model llms.Model
	var err error
	switch cfg.SynthProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.OllamaModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.OpenAIModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported synthesis provider: %s", cfg.SynthProvider)
	}

	return &LLMStrategy{
		model:    model,
		fallback: NewRuleStrategy(cfg.SynthSeed),
		logger:   logger,
	}, nil
}

func (s *LLMStrategy) generate(prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), llmTimeout)
	defer cancel()
	out, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DeriveExplanation phrases the enhanced explanation with the model.
func (s *LLMStrategy) DeriveExplanation(in StepInputs, memory []string) string {
	prompt := fmt.Sprintf(
		"Rewrite this UI automation step as one concise instruction paragraph.\n"+
			"Step: %s\nWait conditions: %s\nTips: %s\n",
		in.Explanation, in.WaitConditions, strings.Join(in.Tips, "; "))
	if len(memory) > 0 {
		prompt += fmt.Sprintf("Known pattern from earlier macros: %s\n", memory[len(memory)-1])
	}
	out, err := s.generate(prompt)
	if err != nil || out == "" {
		s.logger.Warn("llm explanation failed, using rule strategy", "error", err)
		return s.fallback.DeriveExplanation(in, memory)
	}
	return out
}

// ExtractPatterns is always rule-based; see the type comment.
func (s *LLMStrategy) ExtractPatterns(in StepInputs) []string {
	return s.fallback.ExtractPatterns(in)
}

// Summarize phrases the macro summary with the model.
func (s *LLMStrategy) Summarize(macroName string, explanations []string) string {
	prompt := fmt.Sprintf(
		"Summarize this UI macro in one sentence.\nMacro: %s\nSteps:\n- %s\n",
		macroName, strings.Join(explanations, "\n- "))
	out, err := s.generate(prompt)
	if err != nil || out == "" {
		s.logger.Warn("llm summary failed, using rule strategy", "error", err)
		return s.fallback.Summarize(macroName, explanations)
	}
	return out
}

// ImprovementTips phrases improvement tips with the model, one per line.
func (s *LLMStrategy) ImprovementTips(macroName string, explanations []string) []string {
	prompt := fmt.Sprintf(
		"Give up to three short improvement tips for this UI macro, one per line.\n"+
			"Macro: %s\nSteps:\n- %s\n",
		macroName, strings.Join(explanations, "\n- "))
	out, err := s.generate(prompt)
	if err != nil || out == "" {
		s.logger.Warn("llm tips failed, using rule strategy", "error", err)
		return s.fallback.ImprovementTips(macroName, explanations)
	}
	var tips []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. ")); line != "" {
			tips = append(tips, line)
		}
	}
	if len(tips) == 0 {
		return s.fallback.ImprovementTips(macroName, explanations)
	}
	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

// AssistantReply answers the chat panel with the model.
func (s *LLMStrategy) AssistantReply(input string) string {
	out, err := s.generate("Reply in two sentences as a macro-building coach: " + input)
	if err != nil || out == "" {
		s.logger.Warn("llm chat reply failed, using rule strategy", "error", err)
		return s.fallback.AssistantReply(input)
	}
	return out
}
