// Package store holds the in-memory profile tree and is the only writer to
// it. Every mutation goes through the store mutex; synthesis and export are
// applied here so their results land atomically.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/macrobot-go/internal/export"
	"github.com/raphaelgruber/macrobot-go/internal/models"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
)

// ProfileData are the user-supplied fields for a new profile.
type ProfileData struct {
	Name            string
	Description     string
	Specializations []string
	AIMemory        []string
}

// MacroData are the user-supplied fields for a new macro.
type MacroData struct {
	Name     string
	Category string
}

// StepData are the user-supplied fields for a new step.
type StepData struct {
	Name               string
	Description        string
	UserExplanation    string
	UserWaitConditions string
	UserTips           []string
}

// StepPatch updates a step field-by-field. Nil fields are left untouched.
type StepPatch struct {
	Name               *string
	Description        *string
	UserExplanation    *string
	UserWaitConditions *string
	UserTips           *[]string
}

// Selection is the current working context: at most one profile, macro and
// step. Empty strings mean nothing selected at that level.
type Selection struct {
	ProfileID string
	MacroID   string
	StepID    string
}

type options struct {
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Store owns the profile tree. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	profiles []*models.Profile
	sel      Selection

	engine *synthesis.Engine
	clock  func() time.Time
	logger *slog.Logger
}

// New creates an empty store backed by the given synthesis engine.
func New(engine *synthesis.Engine, opts ...Option) *Store {
	o := options{clock: time.Now, logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Store{engine: engine, clock: o.clock, logger: o.logger}
}

// AddProfile creates a profile and selects it.
func (s *Store) AddProfile(data ProfileData) (*models.Profile, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("profile name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	p := &models.Profile{
		ID:              models.NewID("profile"),
		Name:            data.Name,
		Description:     data.Description,
		Specializations: append([]string(nil), data.Specializations...),
		AIMemory:        append([]string(nil), data.AIMemory...),
		Macros:          []*models.Macro{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.profiles = append(s.profiles, p)
	s.sel = Selection{ProfileID: p.ID}
	s.logger.Info("profile created", "profile", p.ID, "name", p.Name)
	return p.Clone(), nil
}

// ListProfiles returns deep copies of all profiles in creation order.
func (s *Store) ListProfiles() []*models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Clone()
	}
	return out
}

// GetProfile returns a deep copy of the profile.
func (s *Store) GetProfile(id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProfile(id)
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// GetStep returns a deep copy of the step.
func (s *Store) GetStep(id string) (*models.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, st := s.findStep(id)
	if st == nil {
		return nil, fmt.Errorf("step %s: %w", id, ErrNotFound)
	}
	return st.Clone(), nil
}

// Selected returns the current selection.
func (s *Store) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SelectProfile makes the profile current and clears the macro and step
// selection. On an unknown id the selection is left untouched.
func (s *Store) SelectProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findProfile(id) == nil {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	s.sel = Selection{ProfileID: id}
	return nil
}

// SelectMacro makes the macro current and clears the step selection. On an
// unknown id the selection is left untouched. A macro outside the selected
// profile is a no-op; selection never cross-links parents.
func (s *Store) SelectMacro(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, m := s.findMacro(id)
	if m == nil {
		return fmt.Errorf("macro %s: %w", id, ErrNotFound)
	}
	if p.ID != s.sel.ProfileID {
		return nil
	}
	s.sel = Selection{ProfileID: p.ID, MacroID: m.ID}
	return nil
}

// SelectStep makes the step current. On an unknown id the selection is left
// untouched. A step outside the selected macro is a no-op; selection never
// cross-links parents.
func (s *Store) SelectStep(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, m, st := s.findStep(id)
	if st == nil {
		return fmt.Errorf("step %s: %w", id, ErrNotFound)
	}
	if m.ID != s.sel.MacroID {
		return nil
	}
	s.sel = Selection{ProfileID: p.ID, MacroID: m.ID, StepID: st.ID}
	return nil
}

// AddMacro appends a macro to the profile and selects it.
func (s *Store) AddMacro(profileID string, data MacroData) (*models.Macro, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("macro name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProfile(profileID)
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
	}

	m := &models.Macro{
		ID:       models.NewID("macro"),
		Name:     data.Name,
		Category: data.Category,
		Steps:    []*models.Step{},
	}
	p.Macros = append(p.Macros, m)
	p.UpdatedAt = s.clock()
	s.sel = Selection{ProfileID: p.ID, MacroID: m.ID}
	s.logger.Info("macro created", "profile", p.ID, "macro", m.ID, "name", m.Name)
	return m.Clone(), nil
}

// AddStep appends a step to the end of the macro and selects it.
func (s *Store) AddStep(macroID string, data StepData) (*models.Step, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("step name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, m := s.findMacro(macroID)
	if m == nil {
		return nil, fmt.Errorf("macro %s: %w", macroID, ErrNotFound)
	}

	st := &models.Step{
		ID:                 models.NewID("step"),
		Name:               data.Name,
		Description:        data.Description,
		UserExplanation:    data.UserExplanation,
		UserWaitConditions: data.UserWaitConditions,
		UserTips:           append([]string(nil), data.UserTips...),
		Screenshots:        []*models.CaptureFrame{},
		AudioNotes:         []*models.AudioNote{},
		CreatedAt:          s.clock(),
	}
	m.Steps = append(m.Steps, st)
	p.UpdatedAt = s.clock()
	s.sel = Selection{ProfileID: p.ID, MacroID: m.ID, StepID: st.ID}
	return st.Clone(), nil
}

// UpdateStep merges the patch into the step. Only non-nil fields change;
// artifacts and AI fields are never touched here.
func (s *Store) UpdateStep(stepID string, patch StepPatch) (*models.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return nil, fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}

	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.Description != nil {
		st.Description = *patch.Description
	}
	if patch.UserExplanation != nil {
		st.UserExplanation = *patch.UserExplanation
	}
	if patch.UserWaitConditions != nil {
		st.UserWaitConditions = *patch.UserWaitConditions
	}
	if patch.UserTips != nil {
		st.UserTips = append([]string(nil), (*patch.UserTips)...)
	}
	p.UpdatedAt = s.clock()
	return st.Clone(), nil
}

// AddStepTip appends one tip to the step.
func (s *Store) AddStepTip(stepID, tip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	st.UserTips = append(st.UserTips, tip)
	p.UpdatedAt = s.clock()
	return nil
}

// RemoveStepTip removes the tip at the given zero-based index.
func (s *Store) RemoveStepTip(stepID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	if index < 0 || index >= len(st.UserTips) {
		return fmt.Errorf("tip index %d out of range for step %s", index, stepID)
	}
	st.UserTips = append(st.UserTips[:index], st.UserTips[index+1:]...)
	p.UpdatedAt = s.clock()
	return nil
}

// DeleteProfile removes the profile and releases every artifact payload
// below it.
func (s *Store) DeleteProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.profiles {
		if p.ID != id {
			continue
		}
		for _, m := range p.Macros {
			releaseMacro(m)
		}
		s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
		if s.sel.ProfileID == id {
			s.sel = Selection{}
		}
		s.logger.Info("profile deleted", "profile", id)
		return nil
	}
	return fmt.Errorf("profile %s: %w", id, ErrNotFound)
}

// DeleteMacro removes the macro and releases its artifact payloads.
func (s *Store) DeleteMacro(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		for i, m := range p.Macros {
			if m.ID != id {
				continue
			}
			releaseMacro(m)
			p.Macros = append(p.Macros[:i], p.Macros[i+1:]...)
			p.UpdatedAt = s.clock()
			if s.sel.MacroID == id {
				s.sel.MacroID = ""
				s.sel.StepID = ""
			}
			return nil
		}
	}
	return fmt.Errorf("macro %s: %w", id, ErrNotFound)
}

// DeleteStep removes the step, closing the order gap, and releases its
// artifact payloads.
func (s *Store) DeleteStep(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		for _, m := range p.Macros {
			for i, st := range m.Steps {
				if st.ID != id {
					continue
				}
				st.ReleaseArtifacts()
				m.Steps = append(m.Steps[:i], m.Steps[i+1:]...)
				p.UpdatedAt = s.clock()
				if s.sel.StepID == id {
					s.sel.StepID = ""
				}
				return nil
			}
		}
	}
	return fmt.Errorf("step %s: %w", id, ErrNotFound)
}

// AppendFrames appends captured frames to the step, never replacing what is
// already there.
func (s *Store) AppendFrames(stepID string, frames []*models.CaptureFrame) error {
	if len(frames) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	st.Screenshots = append(st.Screenshots, frames...)
	p.UpdatedAt = s.clock()
	s.logger.Debug("frames appended", "step", stepID, "count", len(frames))
	return nil
}

// AppendAudioNote appends one recorded audio note to the step.
func (s *Store) AppendAudioNote(stepID string, note *models.AudioNote) error {
	if note == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}
	st.AudioNotes = append(st.AudioNotes, note)
	p.UpdatedAt = s.clock()
	return nil
}

// GenerateStepAI runs step synthesis, writes the derived explanation and
// patterns onto the step and appends the patterns to the profile memory.
func (s *Store) GenerateStepAI(stepID string) (*synthesis.StepSynthesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, st := s.findStep(stepID)
	if st == nil {
		return nil, fmt.Errorf("step %s: %w", stepID, ErrNotFound)
	}

	out, err := s.engine.EnhanceStep(st, p.AIMemory)
	if err != nil {
		return nil, err
	}
	st.AIEnhancedExplanation = out.Explanation
	st.AILearnedPatterns = append([]string(nil), out.Patterns...)
	p.AIMemory = append(p.AIMemory, out.Patterns...)
	p.UpdatedAt = s.clock()
	s.logger.Info("step enhanced", "step", stepID, "patterns", len(out.Patterns))
	return out, nil
}

// SynthesizeMacro runs macro synthesis and overwrites the macro's summary
// and improvement tips.
func (s *Store) SynthesizeMacro(macroID string) (*synthesis.MacroSynthesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, m := s.findMacro(macroID)
	if m == nil {
		return nil, fmt.Errorf("macro %s: %w", macroID, ErrNotFound)
	}

	out := s.engine.SummarizeMacro(m)
	m.AISummary = out.Summary
	m.AIImprovementTips = append([]string(nil), out.ImprovementTips...)
	p.UpdatedAt = s.clock()
	s.logger.Info("macro synthesized", "macro", macroID, "tips", len(out.ImprovementTips))
	return out, nil
}

// SuggestMacros derives macro suggestions from the profile's memory.
func (s *Store) SuggestMacros(profileID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProfile(profileID)
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
	}
	return s.engine.Suggest(p.AIMemory), nil
}

// Chat returns the assistant reply for free-form input.
func (s *Store) Chat(input string) string {
	return s.engine.AssistantReply(input)
}

// ExportProfile serializes the full profile subtree.
func (s *Store) ExportProfile(profileID string, opts ...export.BuildOption) (*models.ProfileDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProfile(profileID)
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
	}
	return export.BuildProfileDocument(p, opts...)
}

// ExportMacro serializes a single macro as a profile document.
func (s *Store) ExportMacro(macroID string, opts ...export.BuildOption) (*models.ProfileDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, m := s.findMacro(macroID)
	if m == nil {
		return nil, fmt.Errorf("macro %s: %w", macroID, ErrNotFound)
	}
	return export.BuildMacroDocument(p, m, opts...)
}

// ImportProfile reconstructs a profile from a document, adds it as a new
// profile and selects it. An invalid document creates nothing.
func (s *Store) ImportProfile(doc *models.ProfileDocument) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := export.ReconstructProfile(doc, s.idTaken, s.clock())
	if err != nil {
		return nil, err
	}
	s.profiles = append(s.profiles, p)
	s.sel = Selection{ProfileID: p.ID}
	s.logger.Info("profile imported", "profile", p.ID, "name", p.Name, "macros", len(p.Macros))
	return p.Clone(), nil
}

// Snapshot returns a deep copy of the whole tree plus the selection, for
// persistence and inspection.
func (s *Store) Snapshot() ([]*models.Profile, Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Clone()
	}
	return out, s.sel
}

// Restore replaces the store contents with profiles loaded from
// persistence. The selection is reset.
func (s *Store) Restore(profiles []*models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = profiles
	s.sel = Selection{}
}

func (s *Store) findProfile(id string) *models.Profile {
	for _, p := range s.profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) findMacro(id string) (*models.Profile, *models.Macro) {
	for _, p := range s.profiles {
		if m := p.FindMacro(id); m != nil {
			return p, m
		}
	}
	return nil, nil
}

func (s *Store) findStep(id string) (*models.Profile, *models.Macro, *models.Step) {
	for _, p := range s.profiles {
		for _, m := range p.Macros {
			if st := m.FindStep(id); st != nil {
				return p, m, st
			}
		}
	}
	return nil, nil, nil
}

func (s *Store) idTaken(id string) bool {
	for _, p := range s.profiles {
		if p.ID == id {
			return true
		}
		for _, m := range p.Macros {
			if m.ID == id {
				return true
			}
			for _, st := range m.Steps {
				if st.ID == id {
					return true
				}
				for _, f := range st.Screenshots {
					if f.ID == id {
						return true
					}
				}
				for _, a := range st.AudioNotes {
					if a.ID == id {
						return true
					}
				}
			}
		}
	}
	return false
}

func releaseMacro(m *models.Macro) {
	for _, st := range m.Steps {
		st.ReleaseArtifacts()
	}
}
