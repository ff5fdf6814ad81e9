package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

// GORMColumnRepository is a GORM implementation of ColumnRepository.
type GORMColumnRepository struct {
	db *gorm.DB
}

// NewGORMColumnRepository creates a new instance of GORMColumnRepository.
func NewGORMColumnRepository(db *gorm.DB) *GORMColumnRepository {
	return &GORMColumnRepository{db: db}
}

func columnNotFound(id string) *apperrors.Error {
	return apperrors.NotFound("ColumnId %s not found", id)
}

func (r *GORMColumnRepository) Create(ctx context.Context, column *models.Column) error {
	if column.ID == "" {
		column.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(column).Error; err != nil {
		return fmt.Errorf("failed to create column: %w", translateError(err, nil))
	}
	return nil
}

func (r *GORMColumnRepository) GetAll(ctx context.Context) ([]models.Column, error) {
	var columns []models.Column
	if err := r.db.WithContext(ctx).Order("id").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get all columns: %w", err)
	}
	return columns, nil
}

func (r *GORMColumnRepository) GetByID(ctx context.Context, id string) (*models.Column, error) {
	var column models.Column
	if err := r.db.WithContext(ctx).First(&column, "id = ?", id).Error; err != nil {
		return nil, translateError(err, columnNotFound(id))
	}
	return &column, nil
}

func (r *GORMColumnRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Column, error) {
	columns := []models.Column{}
	if len(ids) == 0 {
		return columns, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	return columns, nil
}

// ListByProject returns every column whose parent_project is projectID.
func (r *GORMColumnRepository) ListByProject(ctx context.Context, projectID string) ([]models.Column, error) {
	columns := []models.Column{}
	if err := r.db.WithContext(ctx).Where("parent_project = ?", projectID).Order("id").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to list columns of project %s: %w", projectID, err)
	}
	return columns, nil
}

func (r *GORMColumnRepository) Update(ctx context.Context, column *models.Column) error {
	res := r.db.WithContext(ctx).Model(column).Select("*").Updates(column)
	return checkAffected(res, columnNotFound(column.ID))
}

func (r *GORMColumnRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Column{}, "id = ?", id)
	return checkAffected(res, columnNotFound(id))
}
