package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

// AddStepInput defines the input schema for the add_step tool.
type AddStepInput struct {
	MacroID            string   `json:"macro_id,omitempty" jsonschema:"Owning macro (defaults to the current one)"`
	Name               string   `json:"name" jsonschema:"required,Step display name"`
	Description        string   `json:"description,omitempty" jsonschema:"Short description"`
	UserExplanation    string   `json:"user_explanation,omitempty" jsonschema:"How the user performs this step"`
	UserWaitConditions string   `json:"user_wait_conditions,omitempty" jsonschema:"What to wait for before the next step"`
	UserTips           []string `json:"user_tips,omitempty" jsonschema:"Free-form tips"`
}

// StepResult is the response shape for step operations.
type StepResult struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	UserExplanation    string   `json:"user_explanation,omitempty"`
	UserWaitConditions string   `json:"user_wait_conditions,omitempty"`
	UserTips           []string `json:"user_tips,omitempty"`
	Screenshots        int      `json:"screenshots"`
	AudioNotes         int      `json:"audioNotes"`
}

// NewAddStepHandler creates the add_step tool handler. The step is appended
// to the end of the macro and becomes the current one.
func NewAddStepHandler(deps *Dependencies) mcp.ToolHandlerFor[AddStepInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddStepInput) (*mcp.CallToolResult, any, error) {
		macroID, err := deps.resolveMacro(input.MacroID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a macro first"), nil, nil
		}

		st, err := deps.Store.AddStep(macroID, store.StepData{
			Name:               input.Name,
			Description:        input.Description,
			UserExplanation:    input.UserExplanation,
			UserWaitConditions: input.UserWaitConditions,
			UserTips:           input.UserTips,
		})
		if err != nil {
			return ErrorResult("Failed to create step: "+err.Error(), ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfMacro(macroID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(fmt.Sprintf("Created step %s (%s)", st.Name, st.ID)), StepResult{
			ID:                 st.ID,
			Name:               st.Name,
			Description:        st.Description,
			UserExplanation:    st.UserExplanation,
			UserWaitConditions: st.UserWaitConditions,
			UserTips:           st.UserTips,
		}, nil
	}
}

// UpdateStepInput defines the input schema for the update_step tool. Omitted
// fields keep their current value.
type UpdateStepInput struct {
	StepID             string    `json:"step_id,omitempty" jsonschema:"Step to update (defaults to the current one)"`
	Name               *string   `json:"name,omitempty" jsonschema:"New name"`
	Description        *string   `json:"description,omitempty" jsonschema:"New description"`
	UserExplanation    *string   `json:"user_explanation,omitempty" jsonschema:"New explanation"`
	UserWaitConditions *string   `json:"user_wait_conditions,omitempty" jsonschema:"New wait conditions"`
	UserTips           *[]string `json:"user_tips,omitempty" jsonschema:"Replacement tip list"`
}

// NewUpdateStepHandler creates the update_step tool handler.
func NewUpdateStepHandler(deps *Dependencies) mcp.ToolHandlerFor[UpdateStepInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateStepInput) (*mcp.CallToolResult, any, error) {
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}

		st, err := deps.Store.UpdateStep(stepID, store.StepPatch{
			Name:               input.Name,
			Description:        input.Description,
			UserExplanation:    input.UserExplanation,
			UserWaitConditions: input.UserWaitConditions,
			UserTips:           input.UserTips,
		})
		if err != nil {
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult("Updated step " + stepID), StepResult{
			ID:                 st.ID,
			Name:               st.Name,
			Description:        st.Description,
			UserExplanation:    st.UserExplanation,
			UserWaitConditions: st.UserWaitConditions,
			UserTips:           st.UserTips,
			Screenshots:        len(st.Screenshots),
			AudioNotes:         len(st.AudioNotes),
		}, nil
	}
}

// DeleteStepInput defines the input schema for the delete_step tool.
type DeleteStepInput struct {
	StepID string `json:"step_id" jsonschema:"required,Step to delete"`
}

// NewDeleteStepHandler creates the delete_step tool handler. The following
// steps close the order gap.
func NewDeleteStepHandler(deps *Dependencies) mcp.ToolHandlerFor[DeleteStepInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteStepInput) (*mcp.CallToolResult, any, error) {
		profileID, err := deps.owningProfileOfStep(input.StepID)
		if err != nil {
			return ErrorResult("Step not found: "+input.StepID, ""), nil, nil
		}
		if err := deps.Store.DeleteStep(input.StepID); err != nil {
			return ErrorResult("Step not found: "+input.StepID, ""), nil, nil
		}
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}
		return TextResult("Deleted step " + input.StepID), nil, nil
	}
}

// StepTipInput defines the input schema for the add_step_tip tool.
type StepTipInput struct {
	StepID string `json:"step_id,omitempty" jsonschema:"Step to modify (defaults to the current one)"`
	Tip    string `json:"tip" jsonschema:"required,Tip text to append"`
}

// NewAddStepTipHandler creates the add_step_tip tool handler.
func NewAddStepTipHandler(deps *Dependencies) mcp.ToolHandlerFor[StepTipInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StepTipInput) (*mcp.CallToolResult, any, error) {
		if input.Tip == "" {
			return ErrorResult("Tip text is required", ""), nil, nil
		}
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}
		if err := deps.Store.AddStepTip(stepID, input.Tip); err != nil {
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}
		return TextResult("Added tip to step " + stepID), nil, nil
	}
}

// RemoveStepTipInput defines the input schema for the remove_step_tip tool.
type RemoveStepTipInput struct {
	StepID string `json:"step_id,omitempty" jsonschema:"Step to modify (defaults to the current one)"`
	Index  int    `json:"index" jsonschema:"required,Zero-based tip index"`
}

// NewRemoveStepTipHandler creates the remove_step_tip tool handler.
func NewRemoveStepTipHandler(deps *Dependencies) mcp.ToolHandlerFor[RemoveStepTipInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RemoveStepTipInput) (*mcp.CallToolResult, any, error) {
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}
		if err := deps.Store.RemoveStepTip(stepID, input.Index); err != nil {
			return ErrorResult("Failed to remove tip: "+err.Error(), ""), nil, nil
		}

		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}
		return TextResult(fmt.Sprintf("Removed tip %d from step %s", input.Index, stepID)), nil, nil
	}
}
