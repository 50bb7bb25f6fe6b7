// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
	"github.com/raphaelgruber/macrobot-go/internal/db"
	"github.com/raphaelgruber/macrobot-go/internal/metrics"
	"github.com/raphaelgruber/macrobot-go/internal/store"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Store   *store.Store
	DB      *db.Client // nil when persistence is disabled
	Media   capture.MediaSource
	Metrics *metrics.Collector // nil disables the stats tool's counters
	Logger  *slog.Logger

	// FrameInterval overrides the screen recorder's frame sampling
	// interval when positive.
	FrameInterval time.Duration
}

// persist writes the profile's current state through to the database.
// A nil DB makes this a no-op; the in-memory store stays the source of truth.
func (d *Dependencies) persist(ctx context.Context, profileID string) error {
	if d.DB == nil {
		return nil
	}
	p, err := d.Store.GetProfile(profileID)
	if err != nil {
		return err
	}
	doc, err := d.Store.ExportProfile(profileID)
	if err != nil {
		return err
	}
	return d.DB.SaveProfile(ctx, db.ProfileRecord{
		ID:      p.ID,
		Created: p.CreatedAt,
		Updated: p.UpdatedAt,
		Doc:     *doc,
	})
}

// unpersist removes the profile's stored record.
func (d *Dependencies) unpersist(ctx context.Context, profileID string) error {
	if d.DB == nil {
		return nil
	}
	return d.DB.DeleteProfile(ctx, profileID)
}

// resolveProfile returns the explicit id or falls back to the selection.
func (d *Dependencies) resolveProfile(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	sel := d.Store.Selected()
	if sel.ProfileID == "" {
		return "", fmt.Errorf("no profile selected")
	}
	return sel.ProfileID, nil
}

// resolveMacro returns the explicit id or falls back to the selection.
func (d *Dependencies) resolveMacro(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	sel := d.Store.Selected()
	if sel.MacroID == "" {
		return "", fmt.Errorf("no macro selected")
	}
	return sel.MacroID, nil
}

// resolveStep returns the explicit id or falls back to the selection.
func (d *Dependencies) resolveStep(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	sel := d.Store.Selected()
	if sel.StepID == "" {
		return "", fmt.Errorf("no step selected")
	}
	return sel.StepID, nil
}

// owningProfile finds the profile containing the given step.
func (d *Dependencies) owningProfileOfStep(stepID string) (string, error) {
	for _, p := range d.Store.ListProfiles() {
		for _, m := range p.Macros {
			if m.FindStep(stepID) != nil {
				return p.ID, nil
			}
		}
	}
	return "", fmt.Errorf("step %s: %w", stepID, store.ErrNotFound)
}

// owningProfileOfMacro finds the profile containing the given macro.
func (d *Dependencies) owningProfileOfMacro(macroID string) (string, error) {
	for _, p := range d.Store.ListProfiles() {
		if p.FindMacro(macroID) != nil {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("macro %s: %w", macroID, store.ErrNotFound)
}

// clampDuration bounds a recording duration to something sane for a single
// tool call.
func clampDuration(ms int64) time.Duration {
	const (
		defaultMS = 3000
		maxMS     = 60_000
	)
	if ms <= 0 {
		ms = defaultMS
	}
	if ms > maxMS {
		ms = maxMS
	}
	return time.Duration(ms) * time.Millisecond
}
