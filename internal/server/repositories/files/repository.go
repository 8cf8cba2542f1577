package files

import (
	"context"

	"github.com/ameledin/studiovault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.MediaFile) error
	GetByKey(ctx context.Context, key string) (*models.MediaFile, error)
	MarkConfirmed(ctx context.Context, key string) error
	DeleteByKey(ctx context.Context, key string) error
	SelectByCollection(ctx context.Context, collectionID, status string) ([]*models.MediaFile, error)
}
