// Package services implements the broker's domain operations: credential
// issuance with policy validation, credential renewal, upload confirmation
// against the object store, and the confirmed-files manifest.
package services

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	sc "github.com/ameledin/studiovault/internal/server/config"
	"github.com/ameledin/studiovault/internal/server/repositories/repomanager"
	"github.com/ameledin/studiovault/internal/server/storage"
)

type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	config      *sc.Config
}

func NewMediaService(db *sql.DB, repomanager repomanager.RepositoryManager, store storage.Store, config *sc.Config) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: repomanager,
		store:       store,
		config:      config,
	}
}

// StorageKeyFor builds a fresh storage key for one file in a collection.
// The key keeps the original extension but never the original filename, so
// client-supplied names cannot collide or traverse.
func StorageKeyFor(collectionID, filename string) string {
	d := time.Now()
	ext := filepath.Ext(filename)
	return fmt.Sprintf("collections/%s/%d/%d/%d/%v%s", collectionID, d.Year(), int(d.Month()), d.Day(), uuid.New(), ext)
}

// FileSpec describes one file in a batch credential request.
type FileSpec struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// IssuedCredential is one presigned write grant, index-aligned with the
// request batch.
type IssuedCredential struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialBatch is the result of a successful batch issuance.
type CredentialBatch struct {
	Credentials []IssuedCredential `json:"credentials"`
	BatchToken  string             `json:"batch_token"`
}

// Claim is one locally-successful upload submitted for verification.
type Claim struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
}

// RejectedFile is a claim the server refused and removed.
type RejectedFile struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ConfirmVerdict is the authoritative outcome of a confirmation call.
type ConfirmVerdict struct {
	Success        bool           `json:"success"`
	ConfirmedCount int            `json:"confirmed_count"`
	DeletedCount   int            `json:"deleted_count"`
	DeletedFiles   []RejectedFile `json:"deleted_files,omitempty"`
	SizeMismatch   bool           `json:"size_mismatch"`
}

// ManifestEntry is one confirmed file with a time-limited read URL.
type ManifestEntry struct {
	Filename    string `json:"filename"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Category    string `json:"category"`
	URL         string `json:"url"`
}
