package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/server/models"
	"github.com/htmlvault/htmlvault/internal/server/repositories/repomanager"
)

// shareTokenBytes sizes the random share token (hex-encoded to twice this
// many characters). 32 bytes makes collisions and enumeration negligible;
// the unique index on the token column is the backstop.
const shareTokenBytes = 32

// ShareService is the share manager: it owns Share records, token
// generation, password hashing/verification and expiration evaluation.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	baseURL     string
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, baseURL string) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: m,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

// Create mints a share for fileID on behalf of ownerID. A non-empty
// password is stored only as a bcrypt hash. expiresInHours > 0 sets an
// absolute expiry; zero or negative means the share never expires.
func (s *ShareService) Create(ctx context.Context, ownerID int64, fileID int64, password string, expiresInHours int) (*models.Share, error) {
	if err := s.authorizeFile(ctx, ownerID, fileID); err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(shareTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	share := &models.Share{
		FileID:    fileID,
		CreatedBy: ownerID,
		Token:     token,
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		share.PasswordHash = string(hash)
	}

	if expiresInHours > 0 {
		expires := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
		share.ExpiresAt = &expires
	}

	repo := s.repomanager.Shares(s.db)
	created, err := repo.Create(ctx, share)
	if err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}
	return created, nil
}

// URL composes the public redemption link for a share.
func (s *ShareService) URL(share *models.Share) string {
	return s.baseURL + "/api/public/" + share.Token
}

// List returns the file's shares, oldest first. Only the owner may list
// them; password hashes never leave this layer.
func (s *ShareService) List(ctx context.Context, ownerID int64, fileID int64) ([]*models.Share, error) {
	if err := s.authorizeFile(ctx, ownerID, fileID); err != nil {
		return nil, err
	}
	repo := s.repomanager.Shares(s.db)
	return repo.ListByFile(ctx, fileID)
}

// Delete removes a share immediately. Shares have no lock-equivalent
// protection. Ownership is checked against the share's creator, which is
// always the file owner (ownership never transfers), so this also covers
// shares whose backing file is already gone.
func (s *ShareService) Delete(ctx context.Context, ownerID int64, shareID int64) error {
	repo := s.repomanager.Shares(s.db)

	share, err := repo.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.CreatedBy != ownerID {
		return common.ErrorForbidden
	}

	return repo.Delete(ctx, shareID)
}

// Redeem resolves a token (plus optional password) to the id of the file
// it references. The clock is read once per call so an expired share can
// never succeed, even under clock skew within the request.
//
// Failure order: unknown token yields NotFound; a gone backing file yields
// NotFound (orphan invalidation); past expiry yields ErrorShareExpired;
// a set-but-absent password yields ErrorPasswordRequired; a password
// mismatch yields ErrorForbidden.
func (s *ShareService) Redeem(ctx context.Context, token string, password string) (int64, error) {
	now := time.Now()

	repo := s.repomanager.Shares(s.db)
	share, err := repo.GetByToken(ctx, token)
	if err != nil {
		return 0, err
	}

	if _, err := s.repomanager.Files(s.db).GetByID(ctx, share.FileID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrorNotFound
		}
		return 0, err
	}

	if share.ExpiresAt != nil && !now.Before(*share.ExpiresAt) {
		return 0, common.ErrorShareExpired
	}

	if share.HasPassword() {
		if password == "" {
			return 0, common.ErrorPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(share.PasswordHash), []byte(password)) != nil {
			return 0, common.ErrorForbidden
		}
	}

	return share.FileID, nil
}

// authorizeFile resolves fileID and verifies ownerID owns it.
func (s *ShareService) authorizeFile(ctx context.Context, ownerID int64, fileID int64) error {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f.OwnerID != ownerID {
		return common.ErrorForbidden
	}
	return nil
}
