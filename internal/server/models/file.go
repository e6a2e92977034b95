package models

import "time"

// File describes an uploaded HTML document. The bytes themselves live in
// object storage under StorageKey; this record only carries metadata.
type File struct {
	ID int64
	// OwnerID is the uploading user; ownership never transfers.
	OwnerID int64
	// Filename is the original client-supplied name, kept for display and
	// the Content-Disposition header.
	Filename string
	// StorageKey is the object-storage key of the content blob.
	StorageKey string
	// IsLocked vetoes deletion while set, regardless of caller.
	IsLocked  bool
	CreatedAt time.Time
}
