// Package shares declares the repository contract for share records.
package shares

import (
	"context"

	"github.com/htmlvault/htmlvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new share and returns it with the assigned id.
	// A token collision yields common.ErrorAlreadyExists.
	Create(ctx context.Context, share *models.Share) (*models.Share, error)

	// ListByFile returns the file's shares ordered by creation time
	// ascending.
	ListByFile(ctx context.Context, fileID int64) ([]*models.Share, error)

	// GetByID returns a share by id. Absent shares yield
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Share, error)

	// GetByToken returns a share by its public token. Absent tokens yield
	// common.ErrorNotFound.
	GetByToken(ctx context.Context, token string) (*models.Share, error)

	// Delete removes a share by id. Deleting an absent share yields
	// common.ErrorNotFound.
	Delete(ctx context.Context, id int64) error
}
