// Package credentials implements the client-side credential store: three
// durable entries (access token, refresh token, serialized user profile)
// kept in a local SQLite database.
package credentials

import (
	"context"

	"github.com/ficomdev/ficomtest/internal/client/models"
)

// Credentials is the restored session triple. A non-nil value always carries
// all three fields; partial state is never returned.
type Credentials struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Repository persists the session triple across process restarts.
type Repository interface {
	// Save writes all three entries in a single transaction.
	Save(ctx context.Context, user *models.User, accessToken, refreshToken string) error

	// Restore returns the stored triple, or (nil, nil) when any of the three
	// entries is missing. Partial state counts as "no session".
	Restore(ctx context.Context) (*Credentials, error)

	// Clear removes all entries. It is idempotent and does not fail when
	// the entries are already absent.
	Clear(ctx context.Context) error
}
