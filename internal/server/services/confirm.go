package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ameledin/studiovault/internal/classify"
	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/server/models"
	"github.com/ameledin/studiovault/internal/server/token"
)

// ConfirmBatch verifies a batch of claimed uploads against the object store
// and is the only path that marks a file as durably stored. Each claim is
// checked independently:
//
//   - the claimed key must be one the batch token was issued for
//   - the object must actually exist in the store
//   - the stored size must equal the claimed size exactly
//   - the stored size must not exceed the category limit recorded at issuance
//
// A claim failing any check is removed from the store and the manifest and
// reported back as deleted. ConfirmBatch is idempotent: re-confirming an
// already-confirmed key succeeds without side effects.
func (s *MediaService) ConfirmBatch(ctx context.Context, collectionID, batchToken string, claims []Claim) (*ConfirmVerdict, error) {
	tokenCollection, issuedKeys, err := token.ParseBatchToken(batchToken, []byte(s.config.SecretKey))
	if err != nil {
		return nil, err
	}
	if tokenCollection != collectionID {
		return nil, common.ErrInvalidBatchToken
	}

	issued := make(map[string]struct{}, len(issuedKeys))
	for _, k := range issuedKeys {
		issued[k] = struct{}{}
	}

	fileRepo := s.repomanager.Files(s.db)
	verdict := &ConfirmVerdict{}

	for _, claim := range claims {
		if _, ok := issued[claim.Key]; !ok {
			verdict.DeletedFiles = append(verdict.DeletedFiles, RejectedFile{
				Key:      claim.Key,
				Filename: claim.Filename,
				Reason:   "key was not issued for this batch",
			})
			continue
		}

		row, err := fileRepo.GetByKey(ctx, claim.Key)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				verdict.DeletedFiles = append(verdict.DeletedFiles, RejectedFile{
					Key:      claim.Key,
					Filename: claim.Filename,
					Reason:   "no pending record for key",
				})
				continue
			}
			return nil, fmt.Errorf("look up %s: %w", claim.Key, err)
		}

		if row.Status == models.UploadStatusConfirmed {
			verdict.ConfirmedCount++
			continue
		}

		reason, sizeMismatch, err := s.verifyObject(ctx, row, claim)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			if err := s.rejectUpload(ctx, fileRepo.DeleteByKey, claim.Key); err != nil {
				return nil, err
			}
			verdict.DeletedFiles = append(verdict.DeletedFiles, RejectedFile{
				Key:      claim.Key,
				Filename: claim.Filename,
				Reason:   reason,
			})
			if sizeMismatch {
				verdict.SizeMismatch = true
			}
			continue
		}

		if err := fileRepo.MarkConfirmed(ctx, claim.Key); err != nil {
			return nil, fmt.Errorf("confirm %s: %w", claim.Key, err)
		}
		verdict.ConfirmedCount++
	}

	verdict.DeletedCount = len(verdict.DeletedFiles)
	verdict.Success = verdict.DeletedCount == 0
	return verdict, nil
}

// verifyObject checks a pending claim against the store. It returns a
// non-empty rejection reason when the object must be removed, and whether
// the rejection was a size mismatch.
func (s *MediaService) verifyObject(ctx context.Context, row *models.MediaFile, claim Claim) (string, bool, error) {
	stat, err := s.store.Stat(ctx, claim.Key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "object not found in storage", false, nil
		}
		return "", false, fmt.Errorf("stat %s: %w", claim.Key, err)
	}

	if stat.Size != claim.Size {
		return fmt.Sprintf("size mismatch: claimed %d, stored %d", claim.Size, stat.Size), true, nil
	}
	if limit := classify.MaxBytes(classify.Category(row.Category)); stat.Size > limit {
		return fmt.Sprintf("stored object is %d bytes, limit for %s is %d", stat.Size, row.Category, limit), true, nil
	}
	return "", false, nil
}

// rejectUpload removes a rejected object from the store and its manifest
// row. Both removals are idempotent.
func (s *MediaService) rejectUpload(ctx context.Context, deleteRow func(context.Context, string) error, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	if err := deleteRow(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}
