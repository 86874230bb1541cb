// Package users declares the user repository used by credential checks,
// login and the admin user-creation endpoint.
package users

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt.
	// A duplicate login yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound when no user has this login.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// LockUser takes a row lock on the user for the rest of the transaction.
	LockUser(ctx context.Context, id int64) error
}
