package metrics

import (
	"testing"
	"time"
)

func TestCollector_ToolCalls(t *testing.T) {
	c := NewCollector()

	c.RecordToolCall("add_profile", 10*time.Millisecond, false)
	c.RecordToolCall("add_profile", 30*time.Millisecond, false)
	c.RecordToolCall("add_profile", 20*time.Millisecond, true)

	snap := c.Snapshot()
	op, ok := snap.Tools["add_profile"]
	if !ok {
		t.Fatal("missing tool stats")
	}
	if op.Count != 3 || op.Errors != 1 {
		t.Fatalf("count=%d errors=%d", op.Count, op.Errors)
	}
	if op.MinTimeMs != 10 || op.MaxTimeMs != 30 {
		t.Fatalf("min=%d max=%d", op.MinTimeMs, op.MaxTimeMs)
	}
	if op.AvgTimeMs != 20 {
		t.Fatalf("avg=%f", op.AvgTimeMs)
	}
}

func TestCollector_CaptureCounters(t *testing.T) {
	c := NewCollector()

	c.RecordFrames(3)
	c.RecordFrames(2)
	c.RecordAudioNote()

	snap := c.Snapshot()
	if snap.FramesCaptured != 5 {
		t.Fatalf("frames = %d", snap.FramesCaptured)
	}
	if snap.AudioCaptured != 1 {
		t.Fatalf("audio = %d", snap.AudioCaptured)
	}
}

func TestCollector_EmptySnapshot(t *testing.T) {
	c := NewCollector()

	snap := c.Snapshot()
	if len(snap.Tools) != 0 {
		t.Fatalf("tools = %v", snap.Tools)
	}
	if snap.UptimeSeconds < 0 {
		t.Fatal("negative uptime")
	}
}
