// Package models defines server-side data models persisted in the database.
package models

import "time"

// Upload status values for MediaFile.
const (
	UploadStatusPending   = "pending"
	UploadStatusConfirmed = "confirmed"
)

// MediaFile is the manifest row for one object in a collection. A row is
// created in status "pending" when a write credential is issued and becomes
// "confirmed" only after server-side verification of the stored object.
// Rows for rejected objects are deleted together with the objects
// themselves.
type MediaFile struct {
	// ID is the server-assigned row id.
	ID int64
	// CollectionID groups files under one logical record (a shoot session).
	CollectionID string
	// Filename is the client-declared name; not unique within a collection.
	Filename string
	// StorageKey is the object-storage key. Unique; the sole identity used
	// for tracking and reconciliation.
	StorageKey string
	// ContentType as declared at credential time.
	ContentType string
	// DeclaredSize in bytes, verified against the stored object on confirm.
	DeclaredSize int64
	// Category from classification (raw-image, video, ...).
	Category string

	Status      string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}
