package services

import (
	"context"
	"fmt"

	"github.com/ameledin/studiovault/internal/server/models"
)

// Manifest lists the confirmed files of a collection, each with a
// time-limited read URL. Pending uploads never appear: a file only becomes
// visible after confirmation verified it in the store.
func (s *MediaService) Manifest(ctx context.Context, collectionID string) ([]ManifestEntry, error) {
	fileRepo := s.repomanager.Files(s.db)

	rows, err := fileRepo.SelectByCollection(ctx, collectionID, models.UploadStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("select confirmed files: %w", err)
	}

	entries := make([]ManifestEntry, 0, len(rows))
	for _, row := range rows {
		url, err := s.store.PresignGet(ctx, row.StorageKey, s.config.CredentialValidityDuration)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", row.StorageKey, err)
		}
		entries = append(entries, ManifestEntry{
			Filename:    row.Filename,
			Key:         row.StorageKey,
			ContentType: row.ContentType,
			Size:        row.DeclaredSize,
			Category:    row.Category,
			URL:         url,
		})
	}
	return entries, nil
}
