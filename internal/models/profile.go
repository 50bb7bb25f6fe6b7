// Package models defines the profile/macro/step entity tree and the
// captured artifacts attached to steps.
package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates an opaque, globally unique identifier with a type prefix
// ("profile", "macro", "step", "frame", "audio").
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Profile is the top-level user workspace. It owns its macros exclusively
// and accumulates learned phrasing in AIMemory.
type Profile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Specializations []string `json:"specializations"`

	// AIMemory is append-only during normal operation. Repeated entries are
	// kept on purpose: they reflect reinforcement. No cap, no pruning.
	AIMemory []string `json:"aiMemory"`

	Macros []*Macro `json:"macros"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Macro is a named, ordered sequence of steps describing how to operate a
// target application. Belongs to exactly one profile.
type Macro struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Steps    []*Step `json:"steps"`

	// Set only by macro synthesis; overwritten on each run.
	AISummary         string   `json:"aiSummary,omitempty"`
	AIImprovementTips []string `json:"aiImprovementTips,omitempty"`
}

// Step is one action within a macro. Order within Macro.Steps is the
// execution order.
type Step struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	UserExplanation    string   `json:"user_explanation"`
	UserWaitConditions string   `json:"user_wait_conditions"`
	UserTips           []string `json:"user_tips"`

	// Set only by step synthesis.
	AIEnhancedExplanation string   `json:"ai_enhanced_explanation,omitempty"`
	AILearnedPatterns     []string `json:"ai_learned_patterns,omitempty"`

	// Append-only via capture callbacks.
	Screenshots []*CaptureFrame `json:"screenshots"`
	AudioNotes  []*AudioNote    `json:"audio_notes"`

	CreatedAt time.Time `json:"createdAt"`
}

// FindMacro returns the macro with the given id, or nil.
func (p *Profile) FindMacro(id string) *Macro {
	for _, m := range p.Macros {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// FindStep returns the step with the given id, or nil.
func (m *Macro) FindStep(id string) *Step {
	for _, s := range m.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Clone returns a deep copy of the profile subtree. Artifact payloads are
// shared between the original and the copy; everything else is copied.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Specializations = append([]string(nil), p.Specializations...)
	cp.AIMemory = append([]string(nil), p.AIMemory...)
	cp.Macros = make([]*Macro, len(p.Macros))
	for i, m := range p.Macros {
		cp.Macros[i] = m.Clone()
	}
	return &cp
}

// Clone returns a deep copy of the macro subtree.
func (m *Macro) Clone() *Macro {
	cp := *m
	cp.AIImprovementTips = append([]string(nil), m.AIImprovementTips...)
	cp.Steps = make([]*Step, len(m.Steps))
	for i, s := range m.Steps {
		cp.Steps[i] = s.Clone()
	}
	return &cp
}

// Clone returns a deep copy of the step. Artifact metadata is copied;
// payload references are shared.
func (s *Step) Clone() *Step {
	cp := *s
	cp.UserTips = append([]string(nil), s.UserTips...)
	cp.AILearnedPatterns = append([]string(nil), s.AILearnedPatterns...)
	cp.Screenshots = make([]*CaptureFrame, len(s.Screenshots))
	for i, f := range s.Screenshots {
		fc := *f
		cp.Screenshots[i] = &fc
	}
	cp.AudioNotes = make([]*AudioNote, len(s.AudioNotes))
	for i, n := range s.AudioNotes {
		nc := *n
		cp.AudioNotes[i] = &nc
	}
	return &cp
}
