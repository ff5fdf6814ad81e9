package repositories

import (
	"context"

	"taskroom/internal/models"
)

// ColumnRepository defines the interface for column data access.
type ColumnRepository interface {
	Create(ctx context.Context, column *models.Column) error
	GetAll(ctx context.Context) ([]models.Column, error)
	GetByID(ctx context.Context, id string) (*models.Column, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Column, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Column, error)
	Update(ctx context.Context, column *models.Column) error
	Delete(ctx context.Context, id string) error
}
