// Package tools_test exercises the MCP tool surface end to end over
// in-memory transports.
package tools_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
	"github.com/raphaelgruber/macrobot-go/internal/models"
	"github.com/raphaelgruber/macrobot-go/internal/store"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
	"github.com/raphaelgruber/macrobot-go/internal/tools"
)

type testHarness struct {
	session *mcp.ClientSession
	store   *store.Store
	cancel  context.CancelFunc
}

func newHarness(t *testing.T, media capture.MediaSource) (*testHarness, context.Context) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := synthesis.NewEngine(synthesis.NewRuleStrategy(7), logger)
	st := store.New(engine, store.WithLogger(logger))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-macrobot",
		Version: "0.0.1-test",
	}, nil)
	tools.RegisterAll(server, &tools.Dependencies{
		Store:  st,
		Media:  media,
		Logger: logger,
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect")

	h := &testHarness{session: session, store: st, cancel: cancel}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
	})
	return h, ctx
}

func (h *testHarness) call(t *testing.T, ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := h.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "call %s", name)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestToolsRegistered(t *testing.T) {
	h, ctx := newHarness(t, nil)

	result, err := h.session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	for _, want := range []string{
		"ping", "add_profile", "list_profiles", "select_profile", "delete_profile",
		"add_macro", "select_macro", "delete_macro",
		"add_step", "update_step", "delete_step", "add_step_tip", "remove_step_tip",
		"record_screen", "record_audio",
		"generate_step_ai", "synthesize_macro", "suggest_macros", "simulate_step", "chat",
		"export_profile", "export_macro", "import_profile",
	} {
		assert.Contains(t, names, want)
	}
}

func TestPing(t *testing.T) {
	h, ctx := newHarness(t, nil)

	result := h.call(t, ctx, "ping", nil)
	assert.Equal(t, "pong", resultText(t, result))

	result = h.call(t, ctx, "ping", map[string]any{"echo": "hello"})
	assert.Equal(t, "hello", resultText(t, result))
}

func TestProfileMacroStepFlow(t *testing.T) {
	h, ctx := newHarness(t, nil)

	result := h.call(t, ctx, "add_profile", map[string]any{
		"name":        "Editor",
		"description": "video editing workflows",
	})
	assert.False(t, result.IsError)

	// The new profile is current, so add_macro needs no profile_id.
	result = h.call(t, ctx, "add_macro", map[string]any{
		"name":     "CapCut Export",
		"category": "editing",
	})
	assert.False(t, result.IsError)

	result = h.call(t, ctx, "add_step", map[string]any{
		"name":                 "Open App",
		"user_explanation":     "Click the app icon. Wait for the splash screen.",
		"user_wait_conditions": "splash screen gone",
	})
	assert.False(t, result.IsError)

	sel := h.store.Selected()
	require.NotEmpty(t, sel.StepID)

	result = h.call(t, ctx, "update_step", map[string]any{
		"name": "Open Editor",
	})
	assert.False(t, result.IsError)

	st, err := h.store.GetStep(sel.StepID)
	require.NoError(t, err)
	assert.Equal(t, "Open Editor", st.Name)
	assert.Equal(t, "Click the app icon. Wait for the splash screen.", st.UserExplanation)

	result = h.call(t, ctx, "add_step_tip", map[string]any{"tip": "pin it to the taskbar"})
	assert.False(t, result.IsError)
	result = h.call(t, ctx, "remove_step_tip", map[string]any{"index": 0})
	assert.False(t, result.IsError)

	result = h.call(t, ctx, "delete_step", map[string]any{"step_id": sel.StepID})
	assert.False(t, result.IsError)
	_, err = h.store.GetStep(sel.StepID)
	assert.Error(t, err)
}

func TestAddMacro_WithoutProfile(t *testing.T) {
	h, ctx := newHarness(t, nil)

	result := h.call(t, ctx, "add_macro", map[string]any{"name": "Orphan"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no profile selected")
}

func TestSynthesisFlow(t *testing.T) {
	h, ctx := newHarness(t, nil)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{
		"name":             "Open App",
		"user_explanation": "Click the app icon. Wait for the splash screen.",
	})

	result := h.call(t, ctx, "generate_step_ai", nil)
	require.False(t, result.IsError, resultText(t, result))

	sel := h.store.Selected()
	p, err := h.store.GetProfile(sel.ProfileID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.AIMemory, "patterns must land in profile memory")

	result = h.call(t, ctx, "synthesize_macro", nil)
	require.False(t, result.IsError)
	summary := resultText(t, result)
	assert.NotEmpty(t, summary)

	// Rerun produces the same summary for unchanged content.
	result = h.call(t, ctx, "synthesize_macro", nil)
	assert.Equal(t, summary, resultText(t, result))

	result = h.call(t, ctx, "suggest_macros", nil)
	require.False(t, result.IsError)
	assert.NotEmpty(t, resultText(t, result))

	result = h.call(t, ctx, "chat", map[string]any{"message": "how do I export?"})
	require.False(t, result.IsError)
	assert.NotEmpty(t, resultText(t, result))
}

func TestGenerateStepAI_EmptyStep(t *testing.T) {
	h, ctx := newHarness(t, nil)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{"name": "Blank"})

	result := h.call(t, ctx, "generate_step_ai", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nothing to analyze")
}

func TestRecordScreen_AttachesFrames(t *testing.T) {
	media := &capture.StaticSource{
		ScreenChunks: [][]byte{{0x89, 0x50}, {0x89, 0x51}},
	}
	h, ctx := newHarness(t, media)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{"name": "Open App"})

	result := h.call(t, ctx, "record_screen", map[string]any{"duration_ms": 100})
	require.False(t, result.IsError, resultText(t, result))

	sel := h.store.Selected()
	st, err := h.store.GetStep(sel.StepID)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Screenshots, "at least one frame must be attached")
}

func TestRecordAudio_AttachesNote(t *testing.T) {
	media := &capture.StaticSource{
		AudioChunks: [][]byte{{0x1a}, {0x45}},
	}
	h, ctx := newHarness(t, media)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{"name": "Open App"})

	result := h.call(t, ctx, "record_audio", map[string]any{"duration_ms": 100})
	require.False(t, result.IsError, resultText(t, result))

	sel := h.store.Selected()
	st, err := h.store.GetStep(sel.StepID)
	require.NoError(t, err)
	require.Len(t, st.AudioNotes, 1)
}

func TestRecord_PermissionDenied(t *testing.T) {
	media := &capture.StaticSource{ScreenErr: capture.ErrPermissionDenied}
	h, ctx := newHarness(t, media)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{"name": "Open App"})

	result := h.call(t, ctx, "record_screen", map[string]any{"duration_ms": 100})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "permission denied")
}

func TestExportImportRoundTrip(t *testing.T) {
	h, ctx := newHarness(t, nil)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{
		"name":             "Open App",
		"user_explanation": "Click the app icon.",
	})

	result := h.call(t, ctx, "export_profile", nil)
	require.False(t, result.IsError)
	raw := resultText(t, result)

	var doc models.ProfileDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "Editor", doc.Name)
	require.Len(t, doc.Macros, 1)

	result = h.call(t, ctx, "import_profile", map[string]any{
		"document": json.RawMessage(raw),
	})
	require.False(t, result.IsError, resultText(t, result))
	assert.True(t, strings.Contains(resultText(t, result), "Imported profile"))

	assert.Len(t, h.store.ListProfiles(), 2)
}

func TestImportProfile_RejectsEmptyDocument(t *testing.T) {
	h, ctx := newHarness(t, nil)

	result := h.call(t, ctx, "import_profile", map[string]any{
		"document": json.RawMessage(`{}`),
	})
	assert.True(t, result.IsError)
	assert.Empty(t, h.store.ListProfiles())
}

func TestExportMacro_SingleMacro(t *testing.T) {
	h, ctx := newHarness(t, nil)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "Second"})

	// The second macro is current; export it explicitly by listing state.
	result := h.call(t, ctx, "export_macro", nil)
	require.False(t, result.IsError)

	var doc models.ProfileDocument
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &doc))
	require.Len(t, doc.Macros, 1)
	assert.Equal(t, "Second", doc.Macros[0].Name)
}

func TestSimulateStep(t *testing.T) {
	h, ctx := newHarness(t, nil)

	h.call(t, ctx, "add_profile", map[string]any{"name": "Editor"})
	h.call(t, ctx, "add_macro", map[string]any{"name": "CapCut Export"})
	h.call(t, ctx, "add_step", map[string]any{
		"name":             "Open App",
		"user_explanation": "Click the app icon.",
	})

	result := h.call(t, ctx, "simulate_step", map[string]any{"icon_id": "capcut"})
	require.False(t, result.IsError, resultText(t, result))
	cues := strings.Split(resultText(t, result), "\n")
	assert.Len(t, cues, 4)

	result = h.call(t, ctx, "simulate_step", map[string]any{"icon_id": "unknown-app"})
	assert.True(t, result.IsError)
}
