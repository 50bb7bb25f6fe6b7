package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/store"
)

// AddProfileInput defines the input schema for the add_profile tool.
type AddProfileInput struct {
	Name            string   `json:"name" jsonschema:"required,Profile display name"`
	Description     string   `json:"description,omitempty" jsonschema:"What this profile is for"`
	Specializations []string `json:"specializations,omitempty" jsonschema:"Topics the profile specializes in"`
}

// ProfileResult is the response shape for profile operations.
type ProfileResult struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	MemoryEntries   int      `json:"memoryEntries"`
	Macros          int      `json:"macros"`
}

// NewAddProfileHandler creates the add_profile tool handler. The new profile
// becomes the current one.
func NewAddProfileHandler(deps *Dependencies) mcp.ToolHandlerFor[AddProfileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddProfileInput) (*mcp.CallToolResult, any, error) {
		if input.Name == "" {
			return ErrorResult("Profile name is required", "Provide a non-empty name"), nil, nil
		}

		p, err := deps.Store.AddProfile(store.ProfileData{
			Name:            input.Name,
			Description:     input.Description,
			Specializations: input.Specializations,
		})
		if err != nil {
			return ErrorResult("Failed to create profile: "+err.Error(), ""), nil, nil
		}
		if err := deps.persist(ctx, p.ID); err != nil {
			deps.Logger.Error("persist failed", "profile", p.ID, "error", err)
		}

		return TextResult(fmt.Sprintf("Created profile %s (%s)", p.Name, p.ID)), ProfileResult{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Specializations: p.Specializations,
		}, nil
	}
}

// ListProfilesInput defines the input schema for the list_profiles tool.
type ListProfilesInput struct{}

// NewListProfilesHandler creates the list_profiles tool handler.
func NewListProfilesHandler(deps *Dependencies) mcp.ToolHandlerFor[ListProfilesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListProfilesInput) (*mcp.CallToolResult, any, error) {
		profiles := deps.Store.ListProfiles()
		if len(profiles) == 0 {
			return TextResult("No profiles yet"), []ProfileResult{}, nil
		}

		lines := make([]string, 0, len(profiles))
		results := make([]ProfileResult, 0, len(profiles))
		for _, p := range profiles {
			lines = append(lines, fmt.Sprintf("%s: %s (%d macros, %d memory entries)",
				p.ID, p.Name, len(p.Macros), len(p.AIMemory)))
			results = append(results, ProfileResult{
				ID:              p.ID,
				Name:            p.Name,
				Description:     p.Description,
				Specializations: p.Specializations,
				MemoryEntries:   len(p.AIMemory),
				Macros:          len(p.Macros),
			})
		}
		return TextResult(FormatResults(lines)), results, nil
	}
}

// SelectProfileInput defines the input schema for the select_profile tool.
type SelectProfileInput struct {
	ProfileID string `json:"profile_id" jsonschema:"required,Profile to make current"`
}

// NewSelectProfileHandler creates the select_profile tool handler.
func NewSelectProfileHandler(deps *Dependencies) mcp.ToolHandlerFor[SelectProfileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SelectProfileInput) (*mcp.CallToolResult, any, error) {
		if err := deps.Store.SelectProfile(input.ProfileID); err != nil {
			return ErrorResult("Profile not found: "+input.ProfileID, "Use list_profiles to see valid ids"), nil, nil
		}
		return TextResult("Selected profile " + input.ProfileID), nil, nil
	}
}

// DeleteProfileInput defines the input schema for the delete_profile tool.
type DeleteProfileInput struct {
	ProfileID string `json:"profile_id" jsonschema:"required,Profile to delete"`
}

// NewDeleteProfileHandler creates the delete_profile tool handler. The
// profile's macros, steps and captured artifacts go with it.
func NewDeleteProfileHandler(deps *Dependencies) mcp.ToolHandlerFor[DeleteProfileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteProfileInput) (*mcp.CallToolResult, any, error) {
		if err := deps.Store.DeleteProfile(input.ProfileID); err != nil {
			return ErrorResult("Profile not found: "+input.ProfileID, "Use list_profiles to see valid ids"), nil, nil
		}
		if err := deps.unpersist(ctx, input.ProfileID); err != nil {
			deps.Logger.Error("unpersist failed", "profile", input.ProfileID, "error", err)
		}
		return TextResult("Deleted profile " + input.ProfileID), nil, nil
	}
}
