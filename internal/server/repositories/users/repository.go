// Package users declares the server-side repository contract for
// user accounts in persistent storage.
package users

import (
	"context"

	"github.com/ficomdev/ficomtest/internal/server/models"
)

// Repository defines operations for creating and looking up user accounts.
type Repository interface {
	// Create stores a new user. Implementations should return
	// common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks up a user by email. Returns a not-found error
	// when the user is absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks up a user by primary key.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
