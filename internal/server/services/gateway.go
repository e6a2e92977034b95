package services

import (
	"context"
	"io"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/server/auth"
	"github.com/htmlvault/htmlvault/internal/server/models"
)

// AccessGateway is the single authorization chokepoint in front of the file
// registry and the share manager. Requests enter through one of two
// predicates:
//
//   - owner path: a bearer credential resolves to a user id, which scopes
//     every registry and share-manager operation;
//   - public share path: a token (plus optional password) is redeemed for a
//     read-only content stream of exactly one file.
//
// Nothing else in the server calls the registry or share manager directly.
type AccessGateway struct {
	files     *FileService
	shares    *ShareService
	jwtSecret []byte
}

func NewAccessGateway(files *FileService, shares *ShareService, jwtSecret []byte) *AccessGateway {
	return &AccessGateway{files: files, shares: shares, jwtSecret: jwtSecret}
}

// Authenticate resolves a bearer credential to a user id. All failure
// modes collapse to common.ErrInvalidToken.
func (g *AccessGateway) Authenticate(credential string) (int64, error) {
	return auth.GetUserIDFromToken(credential, g.jwtSecret)
}

// --- owner path ---

func (g *AccessGateway) Upload(ctx context.Context, userID int64, filename string, content io.Reader, locked bool) (*models.File, error) {
	return g.files.Upload(ctx, userID, filename, content, locked)
}

func (g *AccessGateway) ListFiles(ctx context.Context, userID int64) ([]*models.File, error) {
	return g.files.List(ctx, userID)
}

func (g *AccessGateway) SetLock(ctx context.Context, userID int64, fileID int64, locked bool) (*models.File, error) {
	return g.files.SetLock(ctx, userID, fileID, locked)
}

func (g *AccessGateway) DeleteFile(ctx context.Context, userID int64, fileID int64) error {
	return g.files.Delete(ctx, userID, fileID)
}

// OpenOwned streams a file back to its owner. A file owned by someone else
// is reported as absent, not forbidden, so file ids cannot be enumerated.
func (g *AccessGateway) OpenOwned(ctx context.Context, userID int64, fileID int64) (*models.File, io.ReadCloser, error) {
	f, err := g.files.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if f.OwnerID != userID {
		return nil, nil, common.ErrorNotFound
	}
	return g.files.Open(ctx, fileID)
}

func (g *AccessGateway) CreateShare(ctx context.Context, userID int64, fileID int64, password string, expiresInHours int) (*models.Share, error) {
	return g.shares.Create(ctx, userID, fileID, password, expiresInHours)
}

func (g *AccessGateway) ShareURL(share *models.Share) string {
	return g.shares.URL(share)
}

func (g *AccessGateway) ListShares(ctx context.Context, userID int64, fileID int64) ([]*models.Share, error) {
	return g.shares.List(ctx, userID, fileID)
}

func (g *AccessGateway) DeleteShare(ctx context.Context, userID int64, shareID int64) error {
	return g.shares.Delete(ctx, userID, shareID)
}

// --- public share path ---

// OpenShared redeems a token for a read-only content stream. This path can
// never reach lock, delete or listing operations.
func (g *AccessGateway) OpenShared(ctx context.Context, token string, password string) (*models.File, io.ReadCloser, error) {
	fileID, err := g.shares.Redeem(ctx, token, password)
	if err != nil {
		return nil, nil, err
	}
	return g.files.Open(ctx, fileID)
}
