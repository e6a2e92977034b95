package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/dbx"
	"github.com/htmlvault/htmlvault/internal/server/models"
	filesrepo "github.com/htmlvault/htmlvault/internal/server/repositories/files"
	refreshrepo "github.com/htmlvault/htmlvault/internal/server/repositories/refreshtokens"
	sharesrepo "github.com/htmlvault/htmlvault/internal/server/repositories/shares"
	usersrepo "github.com/htmlvault/htmlvault/internal/server/repositories/users"
)

// --- in-memory repositories ---
//
// The fakes keep the same error contracts as the Postgres implementations
// so service tests exercise real failure classification.

type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.UserName == u.UserName || existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeFilesRepo struct {
	mu     sync.Mutex
	nextID int64
	order  []int64
	byID   map[int64]*models.File
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{byID: map[int64]*models.File{}}
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file.ID = f.nextID
	file.CreatedAt = time.Now()
	f.byID[file.ID] = file
	f.order = append(f.order, file.ID)
	return file, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.File{}
	for _, id := range f.order {
		if file, ok := f.byID[id]; ok && file.OwnerID == ownerID {
			result = append(result, file)
		}
	}
	return result, nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id int64) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.byID[id]; ok {
		return file, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFilesRepo) SetLock(ctx context.Context, id int64, locked bool) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	file.IsLocked = locked
	return file, nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id int64, ownerID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.byID[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	if file.OwnerID != ownerID {
		return "", common.ErrorForbidden
	}
	if file.IsLocked {
		return "", common.ErrorFileLocked
	}
	delete(f.byID, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return file.StorageKey, nil
}

type fakeSharesRepo struct {
	mu     sync.Mutex
	nextID int64
	order  []int64
	byID   map[int64]*models.Share
}

func newFakeSharesRepo() *fakeSharesRepo {
	return &fakeSharesRepo{byID: map[int64]*models.Share{}}
}

func (f *fakeSharesRepo) Create(ctx context.Context, s *models.Share) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Token == s.Token {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	f.byID[s.ID] = s
	f.order = append(f.order, s.ID)
	return s, nil
}

func (f *fakeSharesRepo) ListByFile(ctx context.Context, fileID int64) ([]*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*models.Share{}
	for _, id := range f.order {
		if s, ok := f.byID[id]; ok && s.FileID == fileID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeSharesRepo) GetByID(ctx context.Context, id int64) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSharesRepo) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSharesRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeRefreshRepo struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byToken: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = &models.RefreshToken{
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byToken[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

// --- repository manager ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	files   *fakeFilesRepo
	shares  *fakeSharesRepo
	refresh *fakeRefreshRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   newFakeUsersRepo(),
		files:   newFakeFilesRepo(),
		shares:  newFakeSharesRepo(),
		refresh: newFakeRefreshRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository     { return m.users }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository     { return m.files }
func (m *fakeRepoManager) Shares(db dbx.DBTX) sharesrepo.Repository   { return m.shares }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshrepo.Repository {
	return m.refresh
}

// --- blob store ---

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	storeErr  error
	readErr   error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Store(ctx context.Context, key string, content io.Reader) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeBlobStore) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}
