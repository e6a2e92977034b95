package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/dbx"
	"github.com/htmlvault/htmlvault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {

	query :=
		`INSERT INTO files (owner_id, filename, storage_key, is_locked)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Filename, file.StorageKey, file.IsLocked).
		Scan(&file.ID, &file.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	query :=
		`SELECT id, owner_id, filename, storage_key, is_locked, created_at FROM files
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Filename, &f.StorageKey, &f.IsLocked, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query :=
		`SELECT id, owner_id, filename, storage_key, is_locked, created_at FROM files
		 WHERE id = $1
		 `

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.OwnerID, &f.Filename, &f.StorageKey, &f.IsLocked, &f.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) SetLock(ctx context.Context, id int64, locked bool) (*models.File, error) {
	query :=
		`UPDATE files SET is_locked = $2
		 WHERE id = $1
		 RETURNING id, owner_id, filename, storage_key, is_locked, created_at
		 `

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id, locked).
		Scan(&f.ID, &f.OwnerID, &f.Filename, &f.StorageKey, &f.IsLocked, &f.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

// Delete removes the row only when it is owned by ownerID and unlocked, in a
// single conditional statement. When no row matched, a follow-up read
// classifies the failure; that read is advisory only, the delete itself
// already decided.
func (r *PostgresRepository) Delete(ctx context.Context, id int64, ownerID int64) (string, error) {
	query :=
		`DELETE FROM files
		 WHERE id = $1 AND owner_id = $2 AND is_locked = FALSE
		 RETURNING storage_key
		 `

	var storageKey string
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&storageKey)
	if err == nil {
		return storageKey, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("db error: %w", err)
	}

	f, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if f.OwnerID != ownerID {
		return "", common.ErrorForbidden
	}
	return "", common.ErrorFileLocked
}
