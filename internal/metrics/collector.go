// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single tool.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds  float64                      `json:"uptimeSeconds"`
	FramesCaptured int64                        `json:"framesCaptured"`
	AudioCaptured  int64                        `json:"audioCaptured"`
	Tools          map[string]OperationSnapshot `json:"tools"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are safe for concurrent use.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	frames    int64
	audio     int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// RecordToolCall records one tool invocation.
func (c *Collector) RecordToolCall(tool string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[tool]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[tool] = m
	}
	m.Count++
	if failed {
		m.Errors++
	}
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordFrames counts captured screen frames.
func (c *Collector) RecordFrames(n int) {
	c.mu.Lock()
	c.frames += int64(n)
	c.mu.Unlock()
}

// RecordAudioNote counts captured audio notes.
func (c *Collector) RecordAudioNote() {
	c.mu.Lock()
	c.audio++
	c.mu.Unlock()
}

// Snapshot returns the current statistics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds:  time.Since(c.startTime).Seconds(),
		FramesCaptured: c.frames,
		AudioCaptured:  c.audio,
		Tools:          make(map[string]OperationSnapshot, len(c.ops)),
	}
	for tool, m := range c.ops {
		if m.Count == 0 {
			continue
		}
		snap.Tools[tool] = OperationSnapshot{
			Count:       m.Count,
			Errors:      m.Errors,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
	}
	return snap
}
