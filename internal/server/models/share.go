package models

import "time"

// Share grants read-only access to exactly one file via an unguessable
// token. PasswordHash and ExpiresAt are both optional; a nil ExpiresAt
// means the share never expires.
type Share struct {
	ID     int64
	FileID int64
	// CreatedBy is the file owner who minted the share.
	CreatedBy int64
	// Token is the public identifier embedded in the share URL. It carries
	// no information about the file or owner.
	Token string
	// PasswordHash is a bcrypt hash of the share password, or empty when
	// the share is open to anyone holding the token.
	PasswordHash string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

// HasPassword reports whether redemption requires a password. This is the
// only password-related fact ever exposed to callers.
func (s *Share) HasPassword() bool {
	return s.PasswordHash != ""
}
