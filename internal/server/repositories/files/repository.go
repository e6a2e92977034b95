// Package files declares the repository contract for file metadata records.
package files

import (
	"context"

	"github.com/htmlvault/htmlvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new file record and returns it with the assigned id.
	Create(ctx context.Context, file *models.File) (*models.File, error)

	// ListByOwner returns the owner's files in insertion order.
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)

	// GetByID returns a file by id without any ownership check; callers
	// must authorize. Absent files yield common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.File, error)

	// SetLock updates the lock flag. Updating an absent file yields
	// common.ErrorNotFound. Setting the same value twice is not an error.
	SetLock(ctx context.Context, id int64, locked bool) (*models.File, error)

	// Delete removes the record and returns its storage key. The lock and
	// ownership checks happen inside the same conditional statement as the
	// delete, so a concurrent lock toggle cannot slip in between. Failures
	// are classified as common.ErrorNotFound, common.ErrorForbidden or
	// common.ErrorFileLocked.
	Delete(ctx context.Context, id int64, ownerID int64) (string, error)
}
