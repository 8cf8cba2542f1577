package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ameledin/studiovault/internal/classify"
	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/dbx"
	"github.com/ameledin/studiovault/internal/server/models"
	"github.com/ameledin/studiovault/internal/server/token"
)

// IssueCredentials validates the whole batch against the upload policy and,
// if it passes, issues one presigned PUT credential per file plus a batch
// token binding the issued keys to the collection. A single policy violation
// rejects the entire batch: nothing is presigned and no manifest rows are
// written.
func (s *MediaService) IssueCredentials(ctx context.Context, collectionID string, files []FileSpec) (*CredentialBatch, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is empty", common.ErrCredentialIssue)
	}
	if len(files) == 0 {
		return nil, common.ErrEmptyBatch
	}

	rows := make([]*models.MediaFile, 0, len(files))
	for _, f := range files {
		if f.Filename == "" {
			return nil, common.ErrEmptyFilename
		}
		if f.Size <= 0 {
			return nil, fmt.Errorf("%w: %s", common.ErrSizeNotDeclared, f.Filename)
		}

		cat, limit := classify.Classify(f.Filename)
		if f.Size > limit {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit for %s is %d", common.ErrFileTooLarge, f.Filename, f.Size, cat, limit)
		}

		rows = append(rows, &models.MediaFile{
			CollectionID: collectionID,
			Filename:     f.Filename,
			StorageKey:   StorageKeyFor(collectionID, f.Filename),
			ContentType:  f.ContentType,
			DeclaredSize: f.Size,
			Category:     string(cat),
			Status:       models.UploadStatusPending,
		})
	}

	expires := s.config.CredentialValidityDuration
	expiresAt := time.Now().Add(expires)

	creds := make([]IssuedCredential, 0, len(rows))
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		url, err := s.store.PresignPut(ctx, row.StorageKey, expires)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", row.Filename, err)
		}
		creds = append(creds, IssuedCredential{
			Key:       row.StorageKey,
			URL:       url,
			ExpiresAt: expiresAt,
		})
		keys = append(keys, row.StorageKey)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)
		for _, row := range rows {
			if err := repo.Create(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record pending uploads: %w", err)
	}

	batchToken, err := token.GenerateBatchToken(collectionID, keys, []byte(s.config.SecretKey), s.config.BatchTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("sign batch token: %w", err)
	}

	return &CredentialBatch{Credentials: creds, BatchToken: batchToken}, nil
}

// RenewCredential re-issues a presigned PUT URL for an already-issued key
// whose credential expired before the upload finished. The key must exist
// in the collection's manifest and still be pending.
func (s *MediaService) RenewCredential(ctx context.Context, collectionID, key string) (*IssuedCredential, error) {
	fileRepo := s.repomanager.Files(s.db)

	row, err := fileRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if row.CollectionID != collectionID {
		return nil, common.ErrorNotFound
	}
	if row.Status != models.UploadStatusPending {
		return nil, fmt.Errorf("%w: %s already confirmed", common.ErrCredentialIssue, key)
	}

	expires := s.config.CredentialValidityDuration
	url, err := s.store.PresignPut(ctx, key, expires)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	return &IssuedCredential{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(expires),
	}, nil
}
