package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/logging"
	"github.com/htmlvault/htmlvault/internal/server/models"
	"github.com/htmlvault/htmlvault/internal/server/repositories/repomanager"
	"github.com/htmlvault/htmlvault/internal/server/storage"
)

// acceptedExtension is the only filename suffix the registry accepts.
const acceptedExtension = ".html"

// FileService is the file registry: it owns File records and the lock
// invariant gating deletion. Content bytes live in the blob store; the
// registry only ever sees storage keys.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "files"),
	}
}

// makeStorageKey builds an unguessable per-upload object key. The original
// filename never appears in the key.
func makeStorageKey(ownerID int64) string {
	return fmt.Sprintf("%d/%v%s", ownerID, uuid.New(), acceptedExtension)
}

// Upload stores content and registers a new file record for ownerID.
// Filenames not ending in ".html" are rejected with ErrorInvalidInput.
func (s *FileService) Upload(ctx context.Context, ownerID int64, filename string, content io.Reader, locked bool) (*models.File, error) {
	if filename == "" || !strings.HasSuffix(filename, acceptedExtension) {
		return nil, common.ErrorInvalidInput
	}

	key := makeStorageKey(ownerID)
	if err := s.blobs.Store(ctx, key, content); err != nil {
		return nil, fmt.Errorf("error storing content: %w", err)
	}

	file := &models.File{
		OwnerID:    ownerID,
		Filename:   filename,
		StorageKey: key,
		IsLocked:   locked,
	}

	repo := s.repomanager.Files(s.db)
	f, err := repo.Create(ctx, file)
	if err != nil {
		// orphaned blob cleanup, best effort
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "failed to clean up blob after insert error", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	return f, nil
}

// List returns ownerID's files in upload order.
func (s *FileService) List(ctx context.Context, ownerID int64) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)
	return repo.ListByOwner(ctx, ownerID)
}

// SetLock toggles the delete protection flag. Only the owner may toggle it;
// setting the current value again succeeds.
func (s *FileService) SetLock(ctx context.Context, ownerID int64, fileID int64, locked bool) (*models.File, error) {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}

	return repo.SetLock(ctx, fileID, locked)
}

// Delete removes the record and then the content. The lock check happens
// inside the repository's conditional delete, so a lock taken concurrently
// can never be bypassed. Blob deletion after the row is gone is best
// effort: a leaked blob is unreachable, a missing row for a live blob is
// not.
func (s *FileService) Delete(ctx context.Context, ownerID int64, fileID int64) error {
	repo := s.repomanager.Files(s.db)

	storageKey, err := repo.Delete(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, storageKey); err != nil {
		s.logger.Warn(ctx, "failed to delete blob for removed file", "key", storageKey, "error", err)
	}
	return nil
}

// Get returns a file record without any ownership check. Callers must
// authorize before use.
func (s *FileService) Get(ctx context.Context, fileID int64) (*models.File, error) {
	repo := s.repomanager.Files(s.db)
	return repo.GetByID(ctx, fileID)
}

// Open returns the record and a content stream for fileID. Like Get, it
// performs no authorization.
func (s *FileService) Open(ctx context.Context, fileID int64) (*models.File, io.ReadCloser, error) {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Read(ctx, f.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading content: %w", err)
	}
	return f, rc, nil
}
