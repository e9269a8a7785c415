package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const preferenceNamespace = "-pref"

func (r Repo) Preference(ctx context.Context, userID string) (newsdesk.UserPreference, error) {
	const q = `SELECT * FROM user_preferences WHERE user_id = ?;`

	var pref newsdesk.UserPreference
	err := r.db.GetContext(ctx, &pref, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return newsdesk.UserPreference{}, newsdesk.ErrNoPreferences
	}
	if err != nil {
		return newsdesk.UserPreference{}, fmt.Errorf("error fetching preferences: %s", err)
	}

	return pref, nil
}

// UpsertPreference creates the user's preference row on first call and
// replaces it in place on every later one. A user has exactly one row.
func (r Repo) UpsertPreference(ctx context.Context, pref newsdesk.UserPreference) (newsdesk.UserPreference, error) {
	const q = `INSERT INTO user_preferences (id, user_id, sources, categories, authors)
	VALUES (:id, :user_id, :sources, :categories, :authors)
	ON CONFLICT (user_id) DO UPDATE SET
		sources = excluded.sources,
		categories = excluded.categories,
		authors = excluded.authors,
		updated_at = CURRENT_TIMESTAMP;`

	pref.ID = uuid.NewString() + preferenceNamespace
	if _, err := r.db.NamedExecContext(ctx, q, pref); err != nil {
		return newsdesk.UserPreference{}, fmt.Errorf("error upserting preferences: %s", err)
	}

	return r.Preference(ctx, pref.UserID)
}
