package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

// GORMProjectRepository is a GORM implementation of ProjectRepository.
type GORMProjectRepository struct {
	db *gorm.DB
}

// NewGORMProjectRepository creates a new instance of GORMProjectRepository.
func NewGORMProjectRepository(db *gorm.DB) *GORMProjectRepository {
	return &GORMProjectRepository{db: db}
}

func projectNotFound(id string) *apperrors.Error {
	return apperrors.NotFound("Project %s not found", id)
}

func (r *GORMProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", translateError(err, nil))
	}
	return nil
}

func (r *GORMProjectRepository) GetAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to get all projects: %w", err)
	}
	return projects, nil
}

func (r *GORMProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, translateError(err, projectNotFound(id))
	}
	return &project, nil
}

// GetByIDs returns the projects that exist among ids, ordered by id.
func (r *GORMProjectRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	projects := []models.Project{}
	if len(ids) == 0 {
		return projects, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	return projects, nil
}

func (r *GORMProjectRepository) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).Select("*").Updates(project)
	return checkAffected(res, projectNotFound(project.ID))
}

func (r *GORMProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	return checkAffected(res, projectNotFound(id))
}
