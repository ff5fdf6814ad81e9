package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{db: db}
}

func taskNotFound(id string) *apperrors.Error {
	return apperrors.NotFound("TaskId %s not found", id)
}

func (r *GORMTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", translateError(err, nil))
	}
	return nil
}

func (r *GORMTaskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to get all tasks: %w", err)
	}
	return tasks, nil
}

func (r *GORMTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, translateError(err, taskNotFound(id))
	}
	return &task, nil
}

func (r *GORMTaskRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	return tasks, nil
}

// ListByColumn returns every task whose parent_column is columnID.
func (r *GORMTaskRepository) ListByColumn(ctx context.Context, columnID string) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.WithContext(ctx).Where("parent_column = ?", columnID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks of column %s: %w", columnID, err)
	}
	return tasks, nil
}

func (r *GORMTaskRepository) Update(ctx context.Context, task *models.Task) error {
	res := r.db.WithContext(ctx).Model(task).Select("*").Updates(task)
	return checkAffected(res, taskNotFound(task.ID))
}

func (r *GORMTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	return checkAffected(res, taskNotFound(id))
}

// DeleteMany hard-deletes the given tasks; missing ids are ignored.
func (r *GORMTaskRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}
