package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const userNamespace = "-usr"

// SQLITE_CONSTRAINT_FOREIGNKEY, raised when a token references a user
// that doesn't exist.
const sqliteFKViolation = 787

func (r Repo) User(ctx context.Context, id string) (newsdesk.User, error) {
	const q = `SELECT * FROM users WHERE id = ?;`

	var usr newsdesk.User
	err := r.db.GetContext(ctx, &usr, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsdesk.User{}, newsdesk.ErrNotFound
	}
	if err != nil {
		return newsdesk.User{}, fmt.Errorf("error fetching user: %s", err)
	}

	return usr, nil
}

func (r Repo) EnsureUser(ctx context.Context, usr newsdesk.User) (newsdesk.User, error) {
	const q = `INSERT INTO users (id, name, email)
	VALUES (:id, :name, :email)
	ON CONFLICT (email) DO NOTHING;`

	usr.ID = uuid.NewString() + userNamespace
	if _, err := r.db.NamedExecContext(ctx, q, usr); err != nil {
		return newsdesk.User{}, fmt.Errorf("error ensuring user: %s", err)
	}

	return r.userByEmail(ctx, usr.Email)
}

func (r Repo) userByEmail(ctx context.Context, email string) (newsdesk.User, error) {
	const q = `SELECT * FROM users WHERE email = ?;`

	var usr newsdesk.User
	if err := r.db.GetContext(ctx, &usr, q, email); err != nil {
		return newsdesk.User{}, fmt.Errorf("error fetching user by email: %s", err)
	}

	return usr, nil
}

// VerifyToken resolves a bearer token to its user. Only a digest of the
// token is ever stored.
func (r Repo) VerifyToken(ctx context.Context, token string) (newsdesk.User, error) {
	const q = `SELECT users.* FROM users
	INNER JOIN api_tokens ON api_tokens.user_id = users.id
	WHERE api_tokens.token_digest = ?;`

	var usr newsdesk.User
	err := r.db.GetContext(ctx, &usr, q, digest(token))
	if errors.Is(err, sql.ErrNoRows) {
		return newsdesk.User{}, newsdesk.ErrNotFound
	}
	if err != nil {
		return newsdesk.User{}, fmt.Errorf("error verifying token: %s", err)
	}

	return usr, nil
}

func (r Repo) IssueToken(ctx context.Context, userID string) (string, error) {
	const q = `INSERT INTO api_tokens (token_digest, user_id) VALUES (?, ?);`

	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx, q, digest(token), userID)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteFKViolation {
		return "", fmt.Errorf("no such user %q: %w", userID, newsdesk.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("error issuing token: %s", err)
	}

	return token, nil
}

func (r Repo) RevokeToken(ctx context.Context, token string) error {
	const q = `DELETE FROM api_tokens WHERE token_digest = ?;`

	if _, err := r.db.ExecContext(ctx, q, digest(token)); err != nil {
		return fmt.Errorf("error revoking token: %s", err)
	}

	return nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
