package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/macrobot-go/internal/models"
)

// ProfileRecord is one persisted profile: identity, timestamps and the full
// export document.
type ProfileRecord struct {
	ID      string
	Created time.Time
	Updated time.Time
	Doc     models.ProfileDocument
}

// row is the wire shape of a profile record.
type row struct {
	ID      surrealmodels.RecordID `json:"id"`
	Name    string                 `json:"name"`
	Doc     models.ProfileDocument `json:"doc"`
	Created time.Time              `json:"created"`
	Updated time.Time              `json:"updated"`
}

func (r row) record() (ProfileRecord, error) {
	id, ok := r.ID.ID.(string)
	if !ok {
		return ProfileRecord{}, fmt.Errorf("unexpected record id type %T", r.ID.ID)
	}
	return ProfileRecord{ID: id, Created: r.Created, Updated: r.Updated, Doc: r.Doc}, nil
}

// SaveProfile creates or replaces the stored profile.
func (c *Client) SaveProfile(ctx context.Context, rec ProfileRecord) error {
	sql := `
		UPSERT type::record("profile", $id) SET
			name = $name,
			doc = $doc,
			created = $created,
			updated = $updated
	`
	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":      rec.ID,
		"name":    rec.Doc.Name,
		"doc":     rec.Doc,
		"created": rec.Created,
		"updated": rec.Updated,
	})
	if err != nil {
		return fmt.Errorf("save profile %s: %w", rec.ID, wrapQueryError(err))
	}
	return nil
}

// LoadProfile fetches one profile by id.
func (c *Client) LoadProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	sql := `SELECT * FROM type::record("profile", $id)`
	results, err := surrealdb.Query[[]row](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	rec, err := (*results)[0].Result[0].record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadProfiles fetches all stored profiles in creation order.
func (c *Client) LoadProfiles(ctx context.Context) ([]ProfileRecord, error) {
	sql := `SELECT * FROM profile ORDER BY created ASC`
	results, err := surrealdb.Query[[]row](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", wrapQueryError(err))
	}

	out := []ProfileRecord{}
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			rec, err := r.record()
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// DeleteProfile removes the stored profile. Deleting an absent profile
// returns ErrNotFound.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	sql := `DELETE type::record("profile", $id) RETURN BEFORE`
	results, err := surrealdb.Query[[]row](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", id, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}
