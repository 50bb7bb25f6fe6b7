package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/export"
	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// ExportProfileInput defines the input schema for the export_profile tool.
type ExportProfileInput struct {
	ProfileID string `json:"profile_id,omitempty" jsonschema:"Profile to export (defaults to the current one)"`
}

// NewExportProfileHandler creates the export_profile tool handler. The
// result is a self-contained JSON document with all payloads inlined.
func NewExportProfileHandler(deps *Dependencies) mcp.ToolHandlerFor[ExportProfileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExportProfileInput) (*mcp.CallToolResult, any, error) {
		profileID, err := deps.resolveProfile(input.ProfileID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a profile first"), nil, nil
		}

		doc, err := deps.Store.ExportProfile(profileID)
		if err != nil {
			return ErrorResult("Export failed: "+err.Error(), ""), nil, nil
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return ErrorResult("Export failed: "+err.Error(), ""), nil, nil
		}
		return TextResult(string(raw)), doc, nil
	}
}

// ExportMacroInput defines the input schema for the export_macro tool.
type ExportMacroInput struct {
	MacroID string `json:"macro_id,omitempty" jsonschema:"Macro to export (defaults to the current one)"`
}

// NewExportMacroHandler creates the export_macro tool handler. The macro is
// wrapped in a profile document so it can be imported anywhere.
func NewExportMacroHandler(deps *Dependencies) mcp.ToolHandlerFor[ExportMacroInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExportMacroInput) (*mcp.CallToolResult, any, error) {
		macroID, err := deps.resolveMacro(input.MacroID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a macro first"), nil, nil
		}

		doc, err := deps.Store.ExportMacro(macroID)
		if err != nil {
			return ErrorResult("Export failed: "+err.Error(), ""), nil, nil
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return ErrorResult("Export failed: "+err.Error(), ""), nil, nil
		}
		return TextResult(string(raw)), doc, nil
	}
}

// ImportProfileInput defines the input schema for the import_profile tool.
type ImportProfileInput struct {
	Document json.RawMessage `json:"document" jsonschema:"required,Profile document produced by export_profile or export_macro"`
}

// NewImportProfileHandler creates the import_profile tool handler. A valid
// document becomes a new profile; an invalid one creates nothing.
func NewImportProfileHandler(deps *Dependencies) mcp.ToolHandlerFor[ImportProfileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ImportProfileInput) (*mcp.CallToolResult, any, error) {
		if len(input.Document) == 0 {
			return ErrorResult("Document is required", "Pass the JSON produced by export_profile"), nil, nil
		}

		var doc models.ProfileDocument
		if err := json.Unmarshal(input.Document, &doc); err != nil {
			return ErrorResult("Document is not valid JSON: "+err.Error(), ""), nil, nil
		}

		p, err := deps.Store.ImportProfile(&doc)
		if err != nil {
			if errors.Is(err, export.ErrInvalidDocument) {
				return ErrorResult("Invalid profile document: "+err.Error(), "The document needs at least a name and a macros list"), nil, nil
			}
			return ErrorResult("Import failed: "+err.Error(), ""), nil, nil
		}
		if err := deps.persist(ctx, p.ID); err != nil {
			deps.Logger.Error("persist failed", "profile", p.ID, "error", err)
		}

		return TextResult(fmt.Sprintf("Imported profile %s (%s) with %d macros", p.Name, p.ID, len(p.Macros))), ProfileResult{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Specializations: p.Specializations,
			MemoryEntries:   len(p.AIMemory),
			Macros:          len(p.Macros),
		}, nil
	}
}
