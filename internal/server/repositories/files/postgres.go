package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/dbx"
	"github.com/ameledin/studiovault/internal/server/models"
)

// PostgresRepository implements the manifest store over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending manifest row for a freshly issued credential.
func (r *PostgresRepository) Create(ctx context.Context, file *models.MediaFile) error {
	query := `
		INSERT INTO media_files (collection_id, filename, storage_key, content_type, declared_size, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	res, err := r.db.ExecContext(ctx, query,
		file.CollectionID, file.Filename, file.StorageKey, file.ContentType, file.DeclaredSize, file.Category, file.Status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// GetByKey returns the manifest row for a storage key.
func (r *PostgresRepository) GetByKey(ctx context.Context, key string) (*models.MediaFile, error) {
	query := `
		SELECT id, collection_id, filename, storage_key, content_type, declared_size, category, status
		FROM media_files WHERE storage_key=$1
	`
	result := &models.MediaFile{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&result.ID, &result.CollectionID, &result.Filename, &result.StorageKey,
		&result.ContentType, &result.DeclaredSize, &result.Category, &result.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// MarkConfirmed sets status='confirmed' for the key. Confirming an already
// confirmed row is a no-op rather than an error, so re-running confirmation
// stays idempotent.
func (r *PostgresRepository) MarkConfirmed(ctx context.Context, key string) error {
	query := `
		UPDATE media_files SET status='confirmed', confirmed_at=now()
		WHERE storage_key=$1 AND status <> 'confirmed'
	`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to mark confirmed: %w", err)
	}
	return nil
}

// DeleteByKey removes the manifest row for a rejected object.
func (r *PostgresRepository) DeleteByKey(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE storage_key=$1`, key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SelectByCollection returns manifest rows for a collection, optionally
// filtered by status (empty status returns all rows).
func (r *PostgresRepository) SelectByCollection(ctx context.Context, collectionID, status string) ([]*models.MediaFile, error) {
	query := `
		SELECT id, collection_id, filename, storage_key, content_type, declared_size, category, status
		FROM media_files WHERE collection_id=$1 AND ($2 = '' OR status=$2)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, collectionID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.MediaFile
	for rows.Next() {
		var item models.MediaFile
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.Filename, &item.StorageKey,
			&item.ContentType, &item.DeclaredSize, &item.Category, &item.Status); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
