// Package httpapi is the HTTP transport boundary. It decodes requests,
// delegates every operation to the access gateway, and maps service errors
// to status codes. No business rules live here.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/htmlvault/htmlvault/internal/common"
	"github.com/htmlvault/htmlvault/internal/logging"
	"github.com/htmlvault/htmlvault/internal/server/models"
	"github.com/htmlvault/htmlvault/internal/server/services"
)

// maxUploadBytes caps multipart upload memory buffering.
const maxUploadBytes = 10 << 20

type Handler struct {
	gateway *services.AccessGateway
	users   *services.UserService
	logger  logging.Logger
}

func NewHandler(gateway *services.AccessGateway, users *services.UserService, logger logging.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		users:   users,
		logger:  logger.With("module", "httpapi"),
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type fileResponse struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	IsLocked  bool      `json:"is_locked"`
	CreatedAt time.Time `json:"created_at"`
}

type lockRequest struct {
	IsLocked bool `json:"is_locked"`
}

type createShareRequest struct {
	Password       string `json:"password,omitempty"`
	ExpiresInHours int    `json:"expires_in_hours,omitempty"`
}

// shareResponse deliberately has no field for the password itself; only
// the has_password flag is ever exposed.
type shareResponse struct {
	ID          int64      `json:"id"`
	FileID      int64      `json:"file_id"`
	Token       string     `json:"token"`
	URL         string     `json:"url"`
	HasPassword bool       `json:"has_password"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, newUserResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, newUserResponse(u))
}

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		h.error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer part.Close()

	locked := r.FormValue("is_locked") == "true"

	f, err := h.gateway.Upload(r.Context(), userIDFromContext(r.Context()), header.Filename, part, locked)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, newFileResponse(f))
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.gateway.ListFiles(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, newFileResponse(f))
	}
	h.json(w, http.StatusOK, resp)
}

func (h *Handler) FileContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	f, rc, err := h.gateway.OpenOwned(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	defer rc.Close()

	h.writeContent(w, r, f, rc)
}

func (h *Handler) SetFileLock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.gateway.SetLock(r.Context(), userIDFromContext(r.Context()), id, req.IsLocked)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, newFileResponse(f))
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.gateway.DeleteFile(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	share, err := h.gateway.CreateShare(r.Context(), userIDFromContext(r.Context()), id, req.Password, req.ExpiresInHours)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, h.newShareResponse(share))
}

func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	shares, err := h.gateway.ListShares(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	resp := make([]shareResponse, 0, len(shares))
	for _, s := range shares {
		resp = append(resp, h.newShareResponse(s))
	}
	h.json(w, http.StatusOK, resp)
}

func (h *Handler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.gateway.DeleteShare(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) PublicContent(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	password := r.URL.Query().Get("password")

	f, rc, err := h.gateway.OpenShared(r.Context(), token, password)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	defer rc.Close()

	h.writeContent(w, r, f, rc)
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newFileResponse(f *models.File) fileResponse {
	return fileResponse{ID: f.ID, Filename: f.Filename, IsLocked: f.IsLocked, CreatedAt: f.CreatedAt}
}

func (h *Handler) newShareResponse(s *models.Share) shareResponse {
	return shareResponse{
		ID:          s.ID,
		FileID:      s.FileID,
		Token:       s.Token,
		URL:         h.gateway.ShareURL(s),
		HasPassword: s.HasPassword(),
		ExpiresAt:   s.ExpiresAt,
		CreatedAt:   s.CreatedAt,
	}
}

// writeContent streams file bytes with the original filename shown inline.
func (h *Handler) writeContent(w http.ResponseWriter, r *http.Request, f *models.File, rc io.Reader) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", f.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn(r.Context(), "error streaming file content", "file_id", f.ID, "error", err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) error(w http.ResponseWriter, status int, message string) {
	h.json(w, status, errorResponse{Error: message})
}

func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		h.error(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, common.ErrorAlreadyExists):
		h.error(w, http.StatusBadRequest, "username or email already taken")
	case errors.Is(err, common.ErrorPasswordRequired):
		h.error(w, http.StatusUnauthorized, "password required")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		h.error(w, http.StatusUnauthorized, "refresh token expired")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		h.error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		h.error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrorNotFound):
		h.error(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorShareExpired):
		h.error(w, http.StatusGone, "share link has expired")
	case errors.Is(err, common.ErrorFileLocked):
		h.error(w, http.StatusLocked, "file is locked")
	default:
		h.logger.Error(r.Context(), "unhandled service error", "error", err)
		h.error(w, http.StatusInternalServerError, "internal error")
	}
}
