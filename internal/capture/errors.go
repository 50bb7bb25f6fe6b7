// Package capture turns live screen/audio media streams into finite,
// ordered sets of immutable artifacts with a start/stop lifecycle.
package capture

import "errors"

// Sentinel errors for the capture lifecycle. Use errors.Is() in callers.
var (
	// ErrPermissionDenied indicates the platform denied access to the
	// requested media source.
	ErrPermissionDenied = errors.New("capture permission denied")

	// ErrDeviceUnavailable indicates the requested media source does not
	// exist or cannot be opened.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrAlreadyRecording indicates Start was called while a recording
	// session is active. The existing session is unaffected.
	ErrAlreadyRecording = errors.New("recorder already recording")

	// ErrPayloadReleased indicates Bytes was called on a released payload.
	ErrPayloadReleased = errors.New("payload already released")
)
