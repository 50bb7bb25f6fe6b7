package models

import "time"

// ProfileDocument is the transferable export format for a profile subtree.
// Payloads are inlined (base64 via encoding/json []byte handling) so the
// document is re-importable without the original session's handles.
//
// Import requires name and macros; everything else is optional.
type ProfileDocument struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Specializations []string        `json:"specializations"`
	AIMemory        []string        `json:"aiMemory"`
	Macros          []MacroDocument `json:"macros"`
}

// MacroDocument serializes one macro with its steps in order.
type MacroDocument struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Category          string         `json:"category"`
	AISummary         string         `json:"aiSummary,omitempty"`
	AIImprovementTips []string       `json:"aiImprovementTips,omitempty"`
	Steps             []StepDocument `json:"steps"`
}

// StepDocument serializes one step with embedded artifact payloads.
type StepDocument struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	UserExplanation       string          `json:"user_explanation"`
	UserWaitConditions    string          `json:"user_wait_conditions"`
	UserTips              []string        `json:"user_tips"`
	AIEnhancedExplanation string          `json:"ai_enhanced_explanation,omitempty"`
	AILearnedPatterns     []string        `json:"ai_learned_patterns,omitempty"`
	Screenshots           []FrameDocument `json:"screenshots"`
	AudioNotes            []AudioDocument `json:"audio_notes"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// FrameDocument is a capture frame with its payload inlined.
type FrameDocument struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	MIME      string    `json:"mime"`
	Data      []byte    `json:"data"`
}

// AudioDocument is an audio note with its payload inlined.
type AudioDocument struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration"`
	MIME       string    `json:"mime"`
	Data       []byte    `json:"data"`
}
