// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/htmlvault/htmlvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A username or email collision yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByLogin looks a user up by username. Absent users yield
	// common.ErrorNotFound.
	GetByLogin(ctx context.Context, login string) (*models.User, error)

	// GetByID looks a user up by id. Absent users yield common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
