package store

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
	"github.com/raphaelgruber/macrobot-go/internal/models"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := synthesis.NewEngine(synthesis.NewRuleStrategy(7), logger)
	return New(engine, WithLogger(logger))
}

// Builds the profile/macro/step tree used across tests and returns its ids.
func seedTree(t *testing.T, s *Store) (profileID, macroID, stepID string) {
	t.Helper()
	p, err := s.AddProfile(ProfileData{
		Name:            "Editor",
		Description:     "video editing workflows",
		Specializations: []string{"capcut"},
	})
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}
	m, err := s.AddMacro(p.ID, MacroData{Name: "CapCut Export", Category: "editing"})
	if err != nil {
		t.Fatalf("add macro: %v", err)
	}
	st, err := s.AddStep(m.ID, StepData{
		Name:               "Open App",
		UserExplanation:    "Click the app icon. Wait for the splash screen.",
		UserWaitConditions: "splash screen gone",
		UserTips:           []string{"pin it to the taskbar"},
	})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	return p.ID, m.ID, st.ID
}

func TestAddProfile_RequiresName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddProfile(ProfileData{}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if got := len(s.ListProfiles()); got != 0 {
		t.Fatalf("profiles = %d, want 0", got)
	}
}

func TestAdd_SelectsNewEntity(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, stepID := seedTree(t, s)

	sel := s.Selected()
	if sel.ProfileID != profileID || sel.MacroID != macroID || sel.StepID != stepID {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestSelect_UnknownIDLeavesSelectionUntouched(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, stepID := seedTree(t, s)

	for _, fn := range []func(string) error{s.SelectProfile, s.SelectMacro, s.SelectStep} {
		if err := fn("nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}

	sel := s.Selected()
	if sel.ProfileID != profileID || sel.MacroID != macroID || sel.StepID != stepID {
		t.Fatalf("selection mutated: %+v", sel)
	}
}

func TestSelect_WithinSelectedParents(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, stepID := seedTree(t, s)

	if err := s.SelectProfile(profileID); err != nil {
		t.Fatalf("select profile: %v", err)
	}
	if sel := s.Selected(); sel.MacroID != "" || sel.StepID != "" {
		t.Fatalf("selecting a profile must clear macro/step: %+v", sel)
	}

	// A step under an unselected macro must not be selectable.
	if err := s.SelectStep(stepID); err != nil {
		t.Fatalf("select step: %v", err)
	}
	if sel := s.Selected(); sel.StepID != "" {
		t.Fatalf("step selected without its macro: %+v", sel)
	}

	if err := s.SelectMacro(macroID); err != nil {
		t.Fatalf("select macro: %v", err)
	}
	if err := s.SelectStep(stepID); err != nil {
		t.Fatalf("select step: %v", err)
	}
	sel := s.Selected()
	if sel.ProfileID != profileID || sel.MacroID != macroID || sel.StepID != stepID {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestSelect_CrossParentIsNoOp(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, stepID := seedTree(t, s)

	other, err := s.AddProfile(ProfileData{Name: "Streamer"})
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}
	otherMacro, err := s.AddMacro(other.ID, MacroData{Name: "Go Live"})
	if err != nil {
		t.Fatalf("add macro: %v", err)
	}

	if err := s.SelectProfile(profileID); err != nil {
		t.Fatalf("select profile: %v", err)
	}

	// otherMacro belongs to a different profile; selection must not follow it.
	if err := s.SelectMacro(otherMacro.ID); err != nil {
		t.Fatalf("select macro: %v", err)
	}
	sel := s.Selected()
	if sel.ProfileID != profileID || sel.MacroID != "" {
		t.Fatalf("selection cross-linked to another profile: %+v", sel)
	}

	// Same for a step outside the selected macro.
	otherStep, err := s.AddStep(otherMacro.ID, StepData{Name: "Open OBS"})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	if err := s.SelectProfile(profileID); err != nil {
		t.Fatalf("select profile: %v", err)
	}
	if err := s.SelectMacro(macroID); err != nil {
		t.Fatalf("select macro: %v", err)
	}
	if err := s.SelectStep(otherStep.ID); err != nil {
		t.Fatalf("select step: %v", err)
	}
	sel = s.Selected()
	if sel.MacroID != macroID || sel.StepID != "" {
		t.Fatalf("selection cross-linked to another macro: %+v", sel)
	}

	// The macro's own step still selects normally.
	if err := s.SelectStep(stepID); err != nil {
		t.Fatalf("select step: %v", err)
	}
	if sel := s.Selected(); sel.StepID != stepID {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestUpdateStep_PatchesOnlyGivenFields(t *testing.T) {
	s := newTestStore(t)
	_, _, stepID := seedTree(t, s)

	name := "Open Editor"
	got, err := s.UpdateStep(stepID, StepPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Open Editor" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.UserExplanation != "Click the app icon. Wait for the splash screen." {
		t.Fatal("untouched field changed")
	}
	if len(got.UserTips) != 1 {
		t.Fatal("tips changed")
	}
}

func TestStepTips_AddAndRemove(t *testing.T) {
	s := newTestStore(t)
	_, _, stepID := seedTree(t, s)

	if err := s.AddStepTip(stepID, "use the dark theme"); err != nil {
		t.Fatalf("add tip: %v", err)
	}
	st, err := s.GetStep(stepID)
	if err != nil {
		t.Fatalf("get step: %v", err)
	}
	if len(st.UserTips) != 2 || st.UserTips[1] != "use the dark theme" {
		t.Fatalf("tips = %v", st.UserTips)
	}

	if err := s.RemoveStepTip(stepID, 0); err != nil {
		t.Fatalf("remove tip: %v", err)
	}
	st, _ = s.GetStep(stepID)
	if len(st.UserTips) != 1 || st.UserTips[0] != "use the dark theme" {
		t.Fatalf("tips after remove = %v", st.UserTips)
	}

	if err := s.RemoveStepTip(stepID, 5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestAppendFrames_AppendsNeverReplaces(t *testing.T) {
	s := newTestStore(t)
	_, _, stepID := seedTree(t, s)

	first := []*models.CaptureFrame{{
		ID:      models.NewID("frame"),
		Payload: capture.NewPayload([]byte{1}, "image/png"),
	}}
	second := []*models.CaptureFrame{{
		ID:      models.NewID("frame"),
		Payload: capture.NewPayload([]byte{2}, "image/png"),
	}}
	if err := s.AppendFrames(stepID, first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendFrames(stepID, second); err != nil {
		t.Fatalf("append: %v", err)
	}

	st, _ := s.GetStep(stepID)
	if len(st.Screenshots) != 2 {
		t.Fatalf("screenshots = %d, want 2", len(st.Screenshots))
	}
	if st.Screenshots[0].ID == st.Screenshots[1].ID {
		t.Fatal("second capture replaced the first")
	}
}

func TestGenerateStepAI_AppendsToProfileMemory(t *testing.T) {
	s := newTestStore(t)
	profileID, _, stepID := seedTree(t, s)

	out, err := s.GenerateStepAI(stepID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Explanation == "" || len(out.Patterns) == 0 {
		t.Fatalf("empty synthesis output: %+v", out)
	}

	st, _ := s.GetStep(stepID)
	if st.AIEnhancedExplanation != out.Explanation {
		t.Fatal("explanation not written to step")
	}
	p, _ := s.GetProfile(profileID)
	if len(p.AIMemory) != len(out.Patterns) {
		t.Fatalf("memory = %d entries, want %d", len(p.AIMemory), len(out.Patterns))
	}

	// A second run appends again; prior entries survive even when repeated.
	if _, err := s.GenerateStepAI(stepID); err != nil {
		t.Fatalf("second generate: %v", err)
	}
	p, _ = s.GetProfile(profileID)
	if len(p.AIMemory) != 2*len(out.Patterns) {
		t.Fatalf("memory = %d entries, want %d", len(p.AIMemory), 2*len(out.Patterns))
	}
}

func TestGenerateStepAI_EmptyInputLeavesStepUntouched(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, _ := seedTree(t, s)

	bare, err := s.AddStep(macroID, StepData{Name: "Blank"})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}

	_, err = s.GenerateStepAI(bare.ID)
	if !errors.Is(err, synthesis.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	st, _ := s.GetStep(bare.ID)
	if st.AIEnhancedExplanation != "" || len(st.AILearnedPatterns) != 0 {
		t.Fatal("AI fields set on failed synthesis")
	}
	p, _ := s.GetProfile(profileID)
	if len(p.AIMemory) != 0 {
		t.Fatal("memory grew on failed synthesis")
	}
}

func TestSynthesizeMacro_IdempotentOverwrite(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, stepID := seedTree(t, s)

	if _, err := s.GenerateStepAI(stepID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	first, err := s.SynthesizeMacro(macroID)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	second, err := s.SynthesizeMacro(macroID)
	if err != nil {
		t.Fatalf("synthesize again: %v", err)
	}
	if first.Summary != second.Summary {
		t.Fatalf("summary changed with unchanged content:\n%q\n%q", first.Summary, second.Summary)
	}
	if len(first.ImprovementTips) != len(second.ImprovementTips) {
		t.Fatal("tips changed with unchanged content")
	}

	p, _ := s.GetProfile(profileID)
	if p.Macros[0].AISummary != first.Summary {
		t.Fatal("summary not written to macro")
	}
}

func TestSuggestMacros(t *testing.T) {
	s := newTestStore(t)
	profileID, _, stepID := seedTree(t, s)

	got, err := s.SuggestMacros(profileID)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stock suggestions = %d, want 2", len(got))
	}

	if _, err := s.GenerateStepAI(stepID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err = s.SuggestMacros(profileID)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no suggestions from populated memory")
	}
}

func TestDeleteStep_ReleasesPayloadsAndClearsSelection(t *testing.T) {
	s := newTestStore(t)
	_, macroID, stepID := seedTree(t, s)

	payload := capture.NewPayload([]byte{1, 2, 3}, "image/png")
	err := s.AppendFrames(stepID, []*models.CaptureFrame{{
		ID:      models.NewID("frame"),
		Payload: payload,
	}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.DeleteStep(stepID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := payload.Bytes(); !errors.Is(err, capture.ErrPayloadReleased) {
		t.Fatalf("payload not released: %v", err)
	}
	sel := s.Selected()
	if sel.StepID != "" {
		t.Fatalf("dangling step selection: %+v", sel)
	}
	if sel.MacroID != macroID {
		t.Fatal("macro selection must survive step delete")
	}
	if _, err := s.GetStep(stepID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProfile_CascadesAndReleases(t *testing.T) {
	s := newTestStore(t)
	profileID, _, stepID := seedTree(t, s)

	payload := capture.NewPayload([]byte{9}, "audio/webm")
	err := s.AppendAudioNote(stepID, &models.AudioNote{
		ID:      models.NewID("audio"),
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.DeleteProfile(profileID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := payload.Bytes(); !errors.Is(err, capture.ErrPayloadReleased) {
		t.Fatalf("payload not released: %v", err)
	}
	if sel := s.Selected(); sel != (Selection{}) {
		t.Fatalf("selection not cleared: %+v", sel)
	}
	if got := len(s.ListProfiles()); got != 0 {
		t.Fatalf("profiles = %d, want 0", got)
	}
}

func TestExportImport_RoundTripCreatesFreshProfile(t *testing.T) {
	s := newTestStore(t)
	profileID, _, stepID := seedTree(t, s)

	err := s.AppendFrames(stepID, []*models.CaptureFrame{{
		ID:      models.NewID("frame"),
		Payload: capture.NewPayload([]byte{0x89, 0x50}, "image/png"),
	}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	doc, err := s.ExportProfile(profileID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	imported, err := s.ImportProfile(doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.ID == profileID {
		t.Fatal("import must mint a fresh profile id")
	}
	if imported.Name != "Editor" {
		t.Fatalf("name = %q", imported.Name)
	}
	// Nested ids collide with the still-present source, so they are minted
	// fresh too, artifacts included.
	if imported.Macros[0].ID == doc.Macros[0].ID {
		t.Fatal("colliding macro id must be reassigned")
	}
	if imported.Macros[0].Steps[0].ID == stepID {
		t.Fatal("colliding step id must be reassigned")
	}
	srcFrame := doc.Macros[0].Steps[0].Screenshots[0]
	gotFrame := imported.Macros[0].Steps[0].Screenshots[0]
	if gotFrame.ID == srcFrame.ID {
		t.Fatal("colliding frame id must be reassigned")
	}
	data, err := gotFrame.Payload.Bytes()
	if err != nil {
		t.Fatalf("payload bytes: %v", err)
	}
	if !bytes.Equal(data, []byte{0x89, 0x50}) {
		t.Fatalf("frame payload = %v", data)
	}
	if sel := s.Selected(); sel.ProfileID != imported.ID {
		t.Fatalf("imported profile not selected: %+v", sel)
	}
	if got := len(s.ListProfiles()); got != 2 {
		t.Fatalf("profiles = %d, want 2", got)
	}
}

func TestImportProfile_RejectsEmptyDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ImportProfile(&models.ProfileDocument{})
	if err == nil {
		t.Fatal("expected error for empty document")
	}
	if got := len(s.ListProfiles()); got != 0 {
		t.Fatalf("profiles = %d, want 0", got)
	}
}

func TestExportMacro_SingleMacroDocument(t *testing.T) {
	s := newTestStore(t)
	profileID, macroID, _ := seedTree(t, s)

	if _, err := s.AddMacro(profileID, MacroData{Name: "Second"}); err != nil {
		t.Fatalf("add macro: %v", err)
	}

	doc, err := s.ExportMacro(macroID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(doc.Macros) != 1 || doc.Macros[0].Name != "CapCut Export" {
		t.Fatalf("macros = %+v", doc.Macros)
	}
	if doc.Name != "Editor" {
		t.Fatal("profile header missing")
	}
}

func TestSnapshot_IsIsolatedCopy(t *testing.T) {
	s := newTestStore(t)
	profileID, _, _ := seedTree(t, s)

	profiles, sel := s.Snapshot()
	if len(profiles) != 1 || sel.ProfileID == "" {
		t.Fatalf("snapshot: %d profiles, sel %+v", len(profiles), sel)
	}

	profiles[0].Name = "Mutated"
	p, _ := s.GetProfile(profileID)
	if p.Name != "Editor" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := newTestStore(t)
	_, _, stepID := seedTree(t, s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = s.AddStepTip(stepID, "tip")
		}
	}()
	for i := 0; i < 50; i++ {
		if _, err := s.GenerateStepAI(stepID); err != nil {
			t.Errorf("generate: %v", err)
		}
	}
	<-done

	st, err := s.GetStep(stepID)
	if err != nil {
		t.Fatalf("get step: %v", err)
	}
	if len(st.UserTips) != 51 {
		t.Fatalf("tips = %d, want 51", len(st.UserTips))
	}
}
