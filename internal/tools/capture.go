package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
)

// RecordInput defines the input schema for the record_screen and
// record_audio tools.
type RecordInput struct {
	StepID     string `json:"step_id,omitempty" jsonschema:"Step to attach the capture to (defaults to the current one)"`
	DurationMS int64  `json:"duration_ms,omitempty" jsonschema:"How long to record, default 3000, max 60000"`
}

// RecordResult is the response shape for capture operations.
type RecordResult struct {
	StepID     string `json:"stepId"`
	Frames     int    `json:"frames,omitempty"`
	AudioNotes int    `json:"audioNotes,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

func captureErrorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		return ErrorResult("Capture permission denied", "Grant screen/microphone access to the capture bridge and retry")
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return ErrorResult("Capture device unavailable", "Check that the capture bridge is running")
	case errors.Is(err, capture.ErrAlreadyRecording):
		return ErrorResult("A recording is already in progress", "Stop it before starting another")
	default:
		return ErrorResult("Capture failed: "+err.Error(), "")
	}
}

// NewRecordScreenHandler creates the record_screen tool handler. It records
// for the requested duration and appends the sampled frames to the step.
func NewRecordScreenHandler(deps *Dependencies) mcp.ToolHandlerFor[RecordInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
		if deps.Media == nil {
			return ErrorResult("Capture is not configured", "Set MACROBOT_BRIDGE_URL to a running capture bridge"), nil, nil
		}
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}
		if _, err := deps.Store.GetStep(stepID); err != nil {
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		duration := clampDuration(input.DurationMS)
		opts := []capture.Option{capture.WithLogger(deps.Logger)}
		if deps.FrameInterval > 0 {
			opts = append(opts, capture.WithFrameInterval(deps.FrameInterval))
		}
		recorder := capture.NewScreenRecorder(deps.Media, opts...)
		if err := recorder.Start(ctx); err != nil {
			return captureErrorResult(err), nil, nil
		}

		select {
		case <-ctx.Done():
			// Still collect what we have; the session may hold frames.
		case <-time.After(duration):
		}
		frames := recorder.Stop()

		if err := deps.Store.AppendFrames(stepID, frames); err != nil {
			for _, f := range frames {
				f.Payload.Release()
			}
			return ErrorResult("Step disappeared during recording: "+stepID, ""), nil, nil
		}

		if deps.Metrics != nil {
			deps.Metrics.RecordFrames(len(frames))
		}
		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(fmt.Sprintf("Recorded %d frames onto step %s", len(frames), stepID)), RecordResult{
			StepID:     stepID,
			Frames:     len(frames),
			DurationMS: duration.Milliseconds(),
		}, nil
	}
}

// NewRecordAudioHandler creates the record_audio tool handler. The whole
// recording becomes one audio note on the step.
func NewRecordAudioHandler(deps *Dependencies) mcp.ToolHandlerFor[RecordInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, any, error) {
		if deps.Media == nil {
			return ErrorResult("Capture is not configured", "Set MACROBOT_BRIDGE_URL to a running capture bridge"), nil, nil
		}
		stepID, err := deps.resolveStep(input.StepID)
		if err != nil {
			return ErrorResult(err.Error(), "Create or select a step first"), nil, nil
		}
		if _, err := deps.Store.GetStep(stepID); err != nil {
			return ErrorResult("Step not found: "+stepID, ""), nil, nil
		}

		duration := clampDuration(input.DurationMS)
		recorder := capture.NewAudioRecorder(deps.Media, capture.WithLogger(deps.Logger))
		if err := recorder.Start(ctx); err != nil {
			return captureErrorResult(err), nil, nil
		}

		select {
		case <-ctx.Done():
		case <-time.After(duration):
		}
		note := recorder.Stop()
		if note == nil {
			return ErrorResult("Recording produced no audio", "Check the microphone feed"), nil, nil
		}

		if err := deps.Store.AppendAudioNote(stepID, note); err != nil {
			note.Payload.Release()
			return ErrorResult("Step disappeared during recording: "+stepID, ""), nil, nil
		}

		if deps.Metrics != nil {
			deps.Metrics.RecordAudioNote()
		}
		profileID, _ := deps.owningProfileOfStep(stepID)
		if err := deps.persist(ctx, profileID); err != nil {
			deps.Logger.Error("persist failed", "profile", profileID, "error", err)
		}

		return TextResult(fmt.Sprintf("Recorded a %dms audio note onto step %s", note.DurationMS, stepID)), RecordResult{
			StepID:     stepID,
			AudioNotes: 1,
			DurationMS: note.DurationMS,
		}, nil
	}
}
