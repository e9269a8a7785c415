package newsdesk

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type (
	// UserPreference is a user's saved filter dimensions. An empty set on
	// any dimension means "no restriction on that dimension", never
	// "exclude everything".
	UserPreference struct {
		ID         string    `db:"id"`
		UserID     string    `db:"user_id"`
		Sources    StringSet `db:"sources"`
		Categories StringSet `db:"categories"`
		Authors    StringSet `db:"authors"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}

	PreferenceRepo interface {
		Preference(ctx context.Context, userID string) (UserPreference, error)
		// UpsertPreference replaces the user's preference set in place,
		// creating it on first call. There is one row per user.
		UpsertPreference(ctx context.Context, pref UserPreference) (UserPreference, error)
	}
)

// StringSet is a set of strings persisted as a JSON array, matching how
// preference dimensions travel over the wire. Order is irrelevant and
// duplicates collapse.
type StringSet []string

// Normalize drops duplicates and sorts for a deterministic stored shape.
func Normalize(values []string) StringSet {
	seen := make(map[string]struct{}, len(values))
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)

	return out
}

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		s = StringSet{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("error encoding string set: %s", err)
	}

	return string(b), nil
}

func (s *StringSet) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = StringSet{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into string set", src)
	}

	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return fmt.Errorf("error decoding string set: %s", err)
	}
	*s = values

	return nil
}
