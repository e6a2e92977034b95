package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/dbx"
	"github.com/htmlvault/htmlvault/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.Share) (*models.Share, error) {

	query :=
		`INSERT INTO shares (file_id, created_by, token, password_hash, expires_at)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		share.FileID, share.CreatedBy, share.Token, share.PasswordHash, share.ExpiresAt).
		Scan(&share.ID, &share.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return share, nil
}

func (r *PostgresRepository) ListByFile(ctx context.Context, fileID int64) ([]*models.Share, error) {
	query :=
		`SELECT id, file_id, created_by, token, password_hash, expires_at, created_at FROM shares
		 WHERE file_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Share{}
	for rows.Next() {
		s := &models.Share{}
		if err := rows.Scan(&s.ID, &s.FileID, &s.CreatedBy, &s.Token, &s.PasswordHash, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Share, error) {
	query :=
		`SELECT id, file_id, created_by, token, password_hash, expires_at, created_at FROM shares
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	query :=
		`SELECT id, file_id, created_by, token, password_hash, expires_at, created_at FROM shares
		 WHERE token = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM shares
		 WHERE id = $1
		 `

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Share, error) {
	s := &models.Share{}
	err := row.Scan(&s.ID, &s.FileID, &s.CreatedBy, &s.Token, &s.PasswordHash, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
