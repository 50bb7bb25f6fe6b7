package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

// AddMacroInput defines the input schema for the add_macro tool.
type AddMacroInput struct {
	ProfileID string `json:"profile_id,omitempty" jsonschema:"Owning profile (defaults to the current one)"`
	Name      string `json:"name" jsonschema:"required,Macro display name"`
	Category  string `json:"category,omitempty" jsonschema:"Free-form grouping label"`
}

// MacroResult is the response shape for macro operations.
type MacroResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Steps    int    `json:"steps"`
}

// NewAddMacroHandler creates the add_macro tool handler. The new macro
// becomes the current one.
func NewAddMacroHandler(deps *Dependencies) mcp.ToolHandlerFor[AddMacroInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddMacroInput) (*mcp.CallToolResult, any, error) {
		profileID, err := deps.resolveProfile(input.ProfileID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a profile first"), nil, nil
		}

		m, err := deps.Store.AddMacro(profileID, store.MacroData{
			Name:     input.Name,
			Category: input.Category,
		})
		if err != nil {
			return ErrorResult("Failed to create macro: "+err.Error(), ""), nil, nil
		}
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(fmt.Sprintf("Created macro %s (%s)", m.Name, m.ID)), MacroResult{
			ID:       m.ID,
			Name:     m.Name,
			Category: m.Category,
		}, nil
	}
}

// SelectMacroInput defines the input schema for the select_macro tool.
type SelectMacroInput struct {
	MacroID string `json:"macro_id" jsonschema:"required,Macro to make current"`
}

// NewSelectMacroHandler creates the select_macro tool handler. The macro
// must belong to the currently selected profile.
func NewSelectMacroHandler(deps *Dependencies) mcp.ToolHandlerFor[SelectMacroInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SelectMacroInput) (*mcp.CallToolResult, any, error) {
		if err := deps.Store.SelectMacro(input.MacroID); err != nil {
			return ErrorResult("Macro not found: "+input.MacroID, ""), nil, nil
		}
		if deps.Store.Selected().MacroID != input.MacroID {
			return ErrorResult("Macro "+input.MacroID+" is not under the selected profile", "Select its profile first"), nil, nil
		}
		return TextResult("Selected macro " + input.MacroID), nil, nil
	}
}

// DeleteMacroInput defines the input schema for the delete_macro tool.
type DeleteMacroInput struct {
	MacroID string `json:"macro_id" jsonschema:"required,Macro to delete"`
}

// NewDeleteMacroHandler creates the delete_macro tool handler.
func NewDeleteMacroHandler(deps *Dependencies) mcp.ToolHandlerFor[DeleteMacroInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteMacroInput) (*mcp.CallToolResult, any, error) {
		profileID, err := deps.owningProfileOfMacro(input.MacroID)
		if err != nil {
			return ErrorResult("Macro not found: "+input.MacroID, ""), nil, nil
		}
		if err := deps.Store.DeleteMacro(input.MacroID); err != nil {
			return ErrorResult("Macro not found: "+input.MacroID, ""), nil, nil
		}
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}
		return TextResult("Deleted macro " + input.MacroID), nil, nil
	}
}
