package newsdesk

import (
	"context"
	"time"
)

type (
	User struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Email     string    `db:"email"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	UserRepo interface {
		User(ctx context.Context, id string) (User, error)
		EnsureUser(ctx context.Context, usr User) (User, error)
	}

	// IdentityService is the surface of the identity collaborator the API
	// consumes. Tokens are opaque bearer strings; how a user proves who
	// they are to get one is not this system's concern.
	IdentityService interface {
		// VerifyToken resolves a bearer token to its user, or ErrNotFound
		// if the token is unknown or revoked.
		VerifyToken(ctx context.Context, token string) (User, error)
		IssueToken(ctx context.Context, userID string) (string, error)
		RevokeToken(ctx context.Context, token string) error
	}
)
