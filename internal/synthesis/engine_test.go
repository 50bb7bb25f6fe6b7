package synthesis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(NewRuleStrategy(42), nil)
}

func TestEnhanceStep_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		step models.Step
	}{
		{"all empty", models.Step{ID: "step-1"}},
		{"whitespace only", models.Step{ID: "step-2", UserExplanation: "   ", UserWaitConditions: "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestEngine().EnhanceStep(&tt.step, nil)
			if !errors.Is(err, ErrEmptyInput) {
				t.Fatalf("EnhanceStep() error = %v, want ErrEmptyInput", err)
			}
		})
	}
}

func TestEnhanceStep_ProducesExplanationAndPatterns(t *testing.T) {
	step := &models.Step{
		ID:                 "step-1",
		UserExplanation:    "Click the app icon. Wait for the splash screen",
		UserWaitConditions: "progress bar finishes loading",
		UserTips:           []string{"pin the app to the taskbar"},
	}
	out, err := newTestEngine().EnhanceStep(step, []string{"click the app icon"})
	if err != nil {
		t.Fatalf("EnhanceStep() error = %v", err)
	}
	if out.Explanation == "" {
		t.Error("explanation is empty")
	}
	if len(out.Patterns) == 0 {
		t.Fatal("no patterns extracted")
	}
	// Sentences, wait conditions and tips all contribute patterns.
	if len(out.Patterns) < 4 {
		t.Errorf("patterns = %d, want >= 4 (%v)", len(out.Patterns), out.Patterns)
	}
	for _, p := range out.Patterns {
		if strings.TrimSpace(p) == "" {
			t.Error("empty pattern extracted")
		}
	}
}

func TestEnhanceStep_Deterministic(t *testing.T) {
	step := &models.Step{ID: "step-1", UserExplanation: "Open the export dialog"}
	memory := []string{"open the export dialog"}

	a, err := NewEngine(NewRuleStrategy(7), nil).EnhanceStep(step, memory)
	if err != nil {
		t.Fatalf("EnhanceStep() error = %v", err)
	}
	b, err := NewEngine(NewRuleStrategy(7), nil).EnhanceStep(step, memory)
	if err != nil {
		t.Fatalf("EnhanceStep() error = %v", err)
	}
	if a.Explanation != b.Explanation || !reflect.DeepEqual(a.Patterns, b.Patterns) {
		t.Errorf("same seed and input produced different output:\n%+v\n%+v", a, b)
	}
}

func TestSummarizeMacro_Idempotent(t *testing.T) {
	macro := &models.Macro{
		ID:   "macro-1",
		Name: "CapCut Export",
		Steps: []*models.Step{
			{ID: "step-1", UserExplanation: "Open the app"},
			{ID: "step-2", AIEnhancedExplanation: "Refined: click export"},
		},
	}
	e := newTestEngine()
	first := e.SummarizeMacro(macro)
	second := e.SummarizeMacro(macro)
	if first.Summary == "" {
		t.Fatal("summary is empty")
	}
	if first.Summary != second.Summary {
		t.Errorf("summary not idempotent: %q vs %q", first.Summary, second.Summary)
	}
	if !reflect.DeepEqual(first.ImprovementTips, second.ImprovementTips) {
		t.Errorf("tips not idempotent: %v vs %v", first.ImprovementTips, second.ImprovementTips)
	}
	if len(first.ImprovementTips) == 0 {
		t.Error("no improvement tips produced")
	}
}

func TestSuggest(t *testing.T) {
	e := newTestEngine()

	stock := e.Suggest(nil)
	if len(stock) != 2 {
		t.Fatalf("Suggest(empty) = %d suggestions, want 2 stock entries", len(stock))
	}

	var memory []string
	for i := 0; i < 8; i++ {
		memory = append(memory, fmt.Sprintf("pattern %d", i))
	}
	got := e.Suggest(memory)
	if len(got) != 5 {
		t.Fatalf("Suggest() = %d suggestions, want 5 (last five memory entries)", len(got))
	}
	if !strings.Contains(got[4], "pattern 7") {
		t.Errorf("last suggestion %q does not reference newest memory entry", got[4])
	}
}

func TestAssistantReply(t *testing.T) {
	e := newTestEngine()
	if reply := e.AssistantReply("   "); !strings.Contains(reply, "more detail") {
		t.Errorf("empty input reply = %q", reply)
	}
	reply := e.AssistantReply("How do I speed up exports?")
	if !strings.Contains(reply, "How do I speed up exports?") {
		t.Errorf("reply %q does not echo the input", reply)
	}
	if reply != e.AssistantReply("How do I speed up exports?") {
		t.Error("reply not deterministic for identical input")
	}
}

func TestSimulateStep(t *testing.T) {
	step := &models.Step{ID: "step-1", UserWaitConditions: "the timeline loads"}

	cues, err := SimulateStep(step, "capcut", "project name")
	if err != nil {
		t.Fatalf("SimulateStep() error = %v", err)
	}
	if len(cues) != 4 {
		t.Fatalf("cues = %d, want 4", len(cues))
	}
	if !strings.Contains(cues[0], "video, edit, logo") {
		t.Errorf("cue[0] = %q, want icon keywords", cues[0])
	}
	if !strings.Contains(cues[2], "project name") {
		t.Errorf("cue[2] = %q, want typed text", cues[2])
	}
	if !strings.Contains(cues[3], "the timeline loads") {
		t.Errorf("cue[3] = %q, want wait conditions", cues[3])
	}

	if _, err := SimulateStep(step, "nope", ""); err == nil {
		t.Fatal("SimulateStep() with unknown icon: want error")
	}
}
