package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
)

// GenerateStepAIInput defines the input schema for the generate_step_ai tool.
type GenerateStepAIInput struct {
	StepID string `json:"step_id,omitempty" jsonschema:"Step to analyze (defaults to the current one)"`
}

// GenerateStepAIResult is the response shape for step synthesis.
type GenerateStepAIResult struct {
	StepID      string   `json:"stepId"`
	Explanation string   `json:"explanation"`
	Patterns    []string `json:"patterns"`
}

// NewGenerateStepAIHandler creates the generate_step_ai tool handler. The
// derived patterns are appended to the owning profile's memory.
func NewGenerateStepAIHandler(deps *Dependencies) mcp.ToolHandlerFor[GenerateStepAIInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateStepAIInput) (*mcp.CallToolResult, any, error) {
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}

		out, err := deps.Store.GenerateStepAI(stepID)
		if err != nil {
			if errors.Is(err, synthesis.ErrEmptyInput) {
				return ErrorResult("Step has nothing to analyze", "Fill in user_explanation, wait conditions or tips first"), nil, nil
			}
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(fmt.Sprintf("Enhanced step %s, learned %d patterns", stepID, len(out.Patterns))), GenerateStepAIResult{
			StepID:      stepID,
			Explanation: out.Explanation,
			Patterns:    out.Patterns,
		}, nil
	}
}

// SynthesizeMacroInput defines the input schema for the synthesize_macro tool.
type SynthesizeMacroInput struct {
	MacroID string `json:"macro_id,omitempty" jsonschema:"Macro to summarize (defaults to the current one)"`
}

// SynthesizeMacroResult is the response shape for macro synthesis.
type SynthesizeMacroResult struct {
	MacroID         string   `json:"macroId"`
	Summary         string   `json:"summary"`
	ImprovementTips []string `json:"improvementTips"`
}

// NewSynthesizeMacroHandler creates the synthesize_macro tool handler.
// Rerunning it overwrites the previous summary and tips.
func NewSynthesizeMacroHandler(deps *Dependencies) mcp.ToolHandlerFor[SynthesizeMacroInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SynthesizeMacroInput) (*mcp.CallToolResult, any, error) {
		macroID, err := deps.resolveMacro(input.MacroID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a macro first"), nil, nil
		}

		out, err := deps.Store.SynthesizeMacro(macroID)
		if err != nil {
			return ErrorResult("Macro not found: "+macroID, ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfMacro(macroID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(out.Summary), SynthesizeMacroResult{
			MacroID:         macroID,
			Summary:         out.Summary,
			ImprovementTips: out.ImprovementTips,
		}, nil
	}
}

// SuggestMacrosInput defines the input schema for the suggest_macros tool.
type SuggestMacrosInput struct {
	ProfileID string `json:"profile_id,omitempty" jsonschema:"Profile to suggest for (defaults to the current one)"`
}

// NewSuggestMacrosHandler creates the suggest_macros tool handler.
// Suggestions are derived from the profile's recent memory entries.
func NewSuggestMacrosHandler(deps *Dependencies) mcp.ToolHandlerFor[SuggestMacrosInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SuggestMacrosInput) (*mcp.CallToolResult, any, error) {
		profileID, err := deps.resolveProfile(input.ProfileID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a profile first"), nil, nil
		}

		suggestions, err := deps.Store.SuggestMacros(profileID)
		if err != nil {
			return ErrorResult("Profile not found: "+profileID, ""), nil, nil
		}
		return TextResult(FormatResults(suggestions)), suggestions, nil
	}
}

// ChatInput defines the input schema for the chat tool.
type ChatInput struct {
	Message string `json:"message" jsonschema:"required,Free-form message to the assistant"`
}

// NewChatHandler creates the chat tool handler.
func NewChatHandler(deps *Dependencies) mcp.ToolHandlerFor[ChatInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, any, error) {
		if input.Message == "" {
			return ErrorResult("Message is required", ""), nil, nil
		}
		return TextResult(deps.Store.Chat(input.Message)), nil, nil
	}
}

// SimulateStepInput defines the input schema for the simulate_step tool.
type SimulateStepInput struct {
	StepID    string `json:"step_id,omitempty" jsonschema:"Step to rehearse (defaults to the current one)"`
	IconID    string `json:"icon_id" jsonschema:"required,Icon to target, see the icon library"`
	TypedText string `json:"typed_text,omitempty" jsonschema:"Text to type during the rehearsal"`
}

// NewSimulateStepHandler creates the simulate_step tool handler. It produces
// the ordered visual cues for rehearsing a step against a known icon.
func NewSimulateStepHandler(deps *Dependencies) mcp.ToolHandlerFor[SimulateStepInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SimulateStepInput) (*mcp.CallToolResult, any, error) {
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}
		st, err := deps.Store.GetStep(stepID)
		if err != nil {
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		cues, err := synthesis.SimulateStep(st, input.IconID, input.TypedText)
		if err != nil {
			return ErrorResult("Simulation failed: "+err.Error(), "Use a known icon id"), nil, nil
		}
		return TextResult(FormatResults(cues)), cues, nil
	}
}
