package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsInput defines the input schema for the stats tool.
type StatsInput struct{}

// NewStatsHandler creates the stats tool handler. It reports uptime,
// capture counters and per-tool call statistics.
func NewStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
		if deps.Metrics == nil {
			return ErrorResult("Metrics collection is disabled", ""), nil, nil
		}
		snap := deps.Metrics.Snapshot()
		raw, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return ErrorResult("Failed to render stats: "+err.Error(), ""), nil, nil
		}
		return TextResult(string(raw)), snap, nil
	}
}
