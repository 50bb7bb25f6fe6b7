// Package export serializes a profile subtree into a self-contained
// document and reconstructs profiles from documents. Payloads are
// converted to durable bytes at export time; a live-session-only handle
// never reaches a document.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// ErrInvalidDocument indicates an import document missing its required
// fields. The import is rejected with no entity created.
var ErrInvalidDocument = errors.New("invalid profile document")

type buildOptions struct {
	progress func(done, total int)
}

// BuildOption configures a document build.
type BuildOption func(*buildOptions)

// WithProgress reports artifact encoding progress during a build.
func WithProgress(fn func(done, total int)) BuildOption {
	return func(o *buildOptions) { o.progress = fn }
}

// BuildProfileDocument exports the complete profile subtree.
func BuildProfileDocument(p *models.Profile, opts ...BuildOption) (*models.ProfileDocument, error) {
	var o buildOptions
	for _, fn := range opts {
		fn(&o)
	}

	total := countArtifacts(p.Macros)
	done := 0
	doc := &models.ProfileDocument{
		Name:            p.Name,
		Description:     p.Description,
		Specializations: append([]string(nil), p.Specializations...),
		AIMemory:        append([]string(nil), p.AIMemory...),
		Macros:          make([]models.MacroDocument, 0, len(p.Macros)),
	}
	for _, m := range p.Macros {
		md, err := buildMacro(m, &o, &done, total)
		if err != nil {
			return nil, err
		}
		doc.Macros = append(doc.Macros, *md)
	}
	return doc, nil
}

// BuildMacroDocument exports a single macro as a profile document carrying
// the profile header and just that macro.
func BuildMacroDocument(p *models.Profile, m *models.Macro, opts ...BuildOption) (*models.ProfileDocument, error) {
	var o buildOptions
	for _, fn := range opts {
		fn(&o)
	}

	total := countArtifacts([]*models.Macro{m})
	done := 0
	md, err := buildMacro(m, &o, &done, total)
	if err != nil {
		return nil, err
	}
	return &models.ProfileDocument{
		Name:            p.Name,
		Description:     p.Description,
		Specializations: append([]string(nil), p.Specializations...),
		AIMemory:        append([]string(nil), p.AIMemory...),
		Macros:          []models.MacroDocument{*md},
	}, nil
}

func countArtifacts(macros []*models.Macro) int {
	n := 0
	for _, m := range macros {
		for _, s := range m.Steps {
			n += len(s.Screenshots) + len(s.AudioNotes)
		}
	}
	return n
}

func buildMacro(m *models.Macro, o *buildOptions, done *int, total int) (*models.MacroDocument, error) {
	md := &models.MacroDocument{
		ID:                m.ID,
		Name:              m.Name,
		Category:          m.Category,
		AISummary:         m.AISummary,
		AIImprovementTips: append([]string(nil), m.AIImprovementTips...),
		Steps:             make([]models.StepDocument, 0, len(m.Steps)),
	}
	for _, s := range m.Steps {
		sd := models.StepDocument{
			ID:                    s.ID,
			Name:                  s.Name,
			Description:           s.Description,
			UserExplanation:       s.UserExplanation,
			UserWaitConditions:    s.UserWaitConditions,
			UserTips:              append([]string(nil), s.UserTips...),
			AIEnhancedExplanation: s.AIEnhancedExplanation,
			AILearnedPatterns:     append([]string(nil), s.AILearnedPatterns...),
			Screenshots:           make([]models.FrameDocument, 0, len(s.Screenshots)),
			AudioNotes:            make([]models.AudioDocument, 0, len(s.AudioNotes)),
			CreatedAt:             s.CreatedAt,
		}
		for _, f := range s.Screenshots {
			data, err := f.Payload.Bytes()
			if err != nil {
				return nil, fmt.Errorf("encode frame %s: %w", f.ID, err)
			}
			sd.Screenshots = append(sd.Screenshots, models.FrameDocument{
				ID:        f.ID,
				Timestamp: f.Timestamp,
				MIME:      f.Payload.MIME(),
				Data:      append([]byte(nil), data...),
			})
			tick(o, done, total)
		}
		for _, n := range s.AudioNotes {
			data, err := n.Payload.Bytes()
			if err != nil {
				return nil, fmt.Errorf("encode audio note %s: %w", n.ID, err)
			}
			sd.AudioNotes = append(sd.AudioNotes, models.AudioDocument{
				ID:         n.ID,
				Timestamp:  n.Timestamp,
				DurationMS: n.DurationMS,
				MIME:       n.Payload.MIME(),
				Data:       append([]byte(nil), data...),
			})
			tick(o, done, total)
		}
		md.Steps = append(md.Steps, sd)
	}
	return md, nil
}

func tick(o *buildOptions, done *int, total int) {
	*done++
	if o.progress != nil {
		o.progress(*done, total)
	}
}

// Validate checks the minimum document shape: a name and a macros list.
func Validate(doc *models.ProfileDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	if doc.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDocument)
	}
	if doc.Macros == nil {
		return fmt.Errorf("%w: missing macros", ErrInvalidDocument)
	}
	return nil
}

// ReconstructProfile builds a profile from an import document. The profile
// gets a fresh id and fresh timestamps; nested macro/step/artifact ids are
// preserved unless taken reports a collision, in which case a fresh id is
// assigned.
func ReconstructProfile(doc *models.ProfileDocument, taken func(id string) bool, now time.Time) (*models.Profile, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	p := buildProfileTree(doc, taken)
	p.ID = models.NewID("profile")
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// RestoreProfile rebuilds a profile from persistence, keeping its identity
// and timestamps. Used by the snapshot store, never by import.
func RestoreProfile(id string, createdAt, updatedAt time.Time, doc *models.ProfileDocument) (*models.Profile, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	p := buildProfileTree(doc, nil)
	p.ID = id
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return p, nil
}

func buildProfileTree(doc *models.ProfileDocument, taken func(id string) bool) *models.Profile {
	keep := func(id, prefix string) string {
		if id == "" || (taken != nil && taken(id)) {
			return models.NewID(prefix)
		}
		return id
	}

	p := &models.Profile{
		Name:            doc.Name,
		Description:     doc.Description,
		Specializations: append([]string(nil), doc.Specializations...),
		AIMemory:        append([]string(nil), doc.AIMemory...),
		Macros:          make([]*models.Macro, 0, len(doc.Macros)),
	}
	for _, md := range doc.Macros {
		m := &models.Macro{
			ID:                keep(md.ID, "macro"),
			Name:              md.Name,
			Category:          md.Category,
			AISummary:         md.AISummary,
			AIImprovementTips: append([]string(nil), md.AIImprovementTips...),
			Steps:             make([]*models.Step, 0, len(md.Steps)),
		}
		for _, sd := range md.Steps {
			s := &models.Step{
				ID:                    keep(sd.ID, "step"),
				Name:                  sd.Name,
				Description:           sd.Description,
				UserExplanation:       sd.UserExplanation,
				UserWaitConditions:    sd.UserWaitConditions,
				UserTips:              append([]string(nil), sd.UserTips...),
				AIEnhancedExplanation: sd.AIEnhancedExplanation,
				AILearnedPatterns:     append([]string(nil), sd.AILearnedPatterns...),
				Screenshots:           make([]*models.CaptureFrame, 0, len(sd.Screenshots)),
				AudioNotes:            make([]*models.AudioNote, 0, len(sd.AudioNotes)),
				CreatedAt:             sd.CreatedAt,
			}
			for _, fd := range sd.Screenshots {
				s.Screenshots = append(s.Screenshots, &models.CaptureFrame{
					ID:        keep(fd.ID, "frame"),
					Timestamp: fd.Timestamp,
					Payload:   capture.NewPayload(append([]byte(nil), fd.Data...), fd.MIME),
				})
			}
			for _, ad := range sd.AudioNotes {
				s.AudioNotes = append(s.AudioNotes, &models.AudioNote{
					ID:         keep(ad.ID, "audio"),
					Timestamp:  ad.Timestamp,
					DurationMS: ad.DurationMS,
					Payload:    capture.NewPayload(append([]byte(nil), ad.Data...), ad.MIME),
				})
			}
			m.Steps = append(m.Steps, s)
		}
		p.Macros = append(p.Macros, m)
	}
	return p
}
