package models

import "time"

// PayloadRef is a handle to an artifact's binary payload. Session-local
// implementations live in the capture package; exports convert every
// payload to durable bytes so documents never carry live handles.
type PayloadRef interface {
	// Bytes returns the durable payload bytes. Fails after Release.
	Bytes() ([]byte, error)
	// MIME reports the payload media type ("image/png", "audio/webm").
	MIME() string
	// Release frees the underlying resource. Idempotent.
	Release()
}

// CaptureFrame is a single screen image captured during a recording
// session. Immutable once created.
type CaptureFrame struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Payload   PayloadRef `json:"-"`
}

// AudioNote is one recorded audio clip. DurationMS is wall-clock time from
// recorder start to stop. Immutable once created.
type AudioNote struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	DurationMS int64      `json:"duration"`
	Payload    PayloadRef `json:"-"`
}

// ReleaseArtifacts releases every artifact payload owned by the step.
// Called on step/macro/profile deletion.
func (s *Step) ReleaseArtifacts() {
	for _, f := range s.Screenshots {
		if f.Payload != nil {
			f.Payload.Release()
		}
	}
	for _, n := range s.AudioNotes {
		if n.Payload != nil {
			n.Payload.Release()
		}
	}
}
