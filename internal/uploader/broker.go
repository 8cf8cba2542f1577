package uploader

import (
	"context"
	"time"
)

// CredentialRequest describes one file in a batch credential request.
type CredentialRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Credential is a time-limited write authorization for a single storage key.
type Credential struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialGrant is the broker's answer to a batch credential request.
// Credentials are index-aligned with the request. BatchToken binds the
// issued keys to the collection and must be presented on confirmation.
type CredentialGrant struct {
	Credentials []Credential `json:"credentials"`
	BatchToken  string       `json:"batch_token"`
}

// UploadClaim is one locally-successful upload submitted for server-side
// verification.
type UploadClaim struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
}

// DeletedFile is a claim the server rejected and removed from storage.
type DeletedFile struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ConfirmResult is the server-authoritative verdict on a batch of claims.
// Any file not counted as confirmed must be treated as not uploaded,
// regardless of what the local transfer observed.
type ConfirmResult struct {
	Success        bool          `json:"success"`
	ConfirmedCount int           `json:"confirmed_count"`
	DeletedCount   int           `json:"deleted_count"`
	DeletedFiles   []DeletedFile `json:"deleted_files,omitempty"`
	SizeMismatch   bool          `json:"size_mismatch"`
}

// Broker is the external collaborator that issues write credentials and
// verifies claimed uploads. RequestCredentials is called once per batch so
// the broker can reject the whole batch atomically on a policy violation.
type Broker interface {
	RequestCredentials(ctx context.Context, collectionID string, files []CredentialRequest) (*CredentialGrant, error)

	// RenewCredential re-issues a fresh write URL for an already-issued,
	// still-pending key. Used when a credential expires between retries.
	RenewCredential(ctx context.Context, collectionID, key string) (*Credential, error)

	// ConfirmUploads must be treated as mandatory: until it succeeds, no
	// locally-successful file is durably stored. It is a verify operation
	// and safe to repeat.
	ConfirmUploads(ctx context.Context, collectionID, batchToken string, claims []UploadClaim) (*ConfirmResult, error)
}
