package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// Called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Profile lifecycle
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_profile",
		Description: "Create a new profile and make it current",
	}, NewAddProfileHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_profiles",
		Description: "List all profiles with macro and memory counts",
	}, NewListProfilesHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_profile",
		Description: "Make a profile the current working context",
	}, NewSelectProfileHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_profile",
		Description: "Delete a profile including its macros, steps and captures",
	}, NewDeleteProfileHandler(deps))

	// Macro lifecycle
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_macro",
		Description: "Create a macro in a profile and make it current",
	}, NewAddMacroHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_macro",
		Description: "Make a macro (and its profile) the current working context",
	}, NewSelectMacroHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_macro",
		Description: "Delete a macro and its steps",
	}, NewDeleteMacroHandler(deps))

	// Step lifecycle
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_step",
		Description: "Append a step to a macro and make it current",
	}, NewAddStepHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_step",
		Description: "Update step fields; omitted fields keep their value",
	}, NewUpdateStepHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_step",
		Description: "Delete a step; later steps close the gap",
	}, NewDeleteStepHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_step_tip",
		Description: "Append a tip to a step",
	}, NewAddStepTipHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_step_tip",
		Description: "Remove a step tip by zero-based index",
	}, NewRemoveStepTipHandler(deps))

	// Capture
	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_screen",
		Description: "Record the screen for a duration and attach the frames to a step",
	}, NewRecordScreenHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_audio",
		Description: "Record the microphone for a duration and attach one audio note to a step",
	}, NewRecordAudioHandler(deps))

	// Synthesis
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_step_ai",
		Description: "Derive an enhanced explanation and learned patterns for a step",
	}, NewGenerateStepAIHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "synthesize_macro",
		Description: "Summarize a macro's steps and derive improvement tips",
	}, NewSynthesizeMacroHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_macros",
		Description: "Suggest new macros based on the profile's learned patterns",
	}, NewSuggestMacrosHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_step",
		Description: "Produce the ordered visual cues for rehearsing a step",
	}, NewSimulateStepHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Free-form chat with the macro assistant",
	}, NewChatHandler(deps))

	// Transfer
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_profile",
		Description: "Export a profile as a self-contained JSON document",
	}, NewExportProfileHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_macro",
		Description: "Export a single macro as a self-contained JSON document",
	}, NewExportMacroHandler(deps))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_profile",
		Description: "Import a profile document as a new profile",
	}, NewImportProfileHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Report server uptime, capture counters and tool call stats",
	}, NewStatsHandler(deps))
}
