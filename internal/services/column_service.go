package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
	"taskroom/internal/validation"
)

// ColumnService handles business logic related to columns.
type ColumnService struct {
	store    repositories.Store
	validate *validator.Validate
}

// NewColumnService creates a new ColumnService.
func NewColumnService(store repositories.Store) *ColumnService {
	return &ColumnService{
		store:    store,
		validate: validation.New(),
	}
}

// CreateColumn appends a new, empty column to an existing project.
func (s *ColumnService) CreateColumn(ctx context.Context, input CreateColumnInput) (*models.Column, error) {
	column := &models.Column{
		ID:            models.NewID(),
		ParentProject: strings.TrimSpace(input.ParentProject),
		Name:          strings.TrimSpace(input.Name),
		Tasks:         models.IDList{},
	}
	if err := validation.Check(s.validate, "Column", column); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		project, err := tx.Projects().GetByID(ctx, column.ParentProject)
		if err != nil {
			return err
		}
		if err := tx.Columns().Create(ctx, column); err != nil {
			return fmt.Errorf("failed to create column: %w", err)
		}
		project.Columns = models.AddID(project.Columns, column.ID)
		return tx.Projects().Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Column %s created successfully", column.ID)
	return column, nil
}

func (s *ColumnService) GetAllColumns(ctx context.Context) ([]models.Column, error) {
	return s.store.Columns().GetAll(ctx)
}

func (s *ColumnService) GetColumnByID(ctx context.Context, id string) (*models.Column, error) {
	if err := models.ParseID(id, "_id"); err != nil {
		return nil, err
	}
	return s.store.Columns().GetByID(ctx, id)
}

// UpdateColumn applies a partial update. Every task id new to the column is
// moved here from its previous column. Ids may be reordered but not dropped:
// a task leaves a column by being moved or deleted.
func (s *ColumnService) UpdateColumn(ctx context.Context, id string, input UpdateColumnInput) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}
	if input.Tasks != nil {
		if err := models.ParseIDs(*input.Tasks, "tasks"); err != nil {
			return err
		}
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		column, err := tx.Columns().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			column.Name = strings.TrimSpace(*input.Name)
		}
		if err := validation.Check(s.validate, "Column", column); err != nil {
			return err
		}

		if input.Tasks != nil {
			tasks := models.Dedupe(*input.Tasks)
			if removed := models.Difference(column.Tasks, tasks); len(removed) > 0 {
				return apperrors.Validation("Column validation failed: tasks: cannot remove tasks %s; move them to another column or delete them",
					strings.Join(removed, ", "))
			}
			for _, taskID := range models.Difference(tasks, column.Tasks) {
				if err := s.attachTask(ctx, tx, column.ID, taskID); err != nil {
					return err
				}
			}
			column.Tasks = tasks
		}

		return tx.Columns().Update(ctx, column)
	})
	if err != nil {
		return err
	}

	log.Printf("Column %s updated successfully", id)
	return nil
}

func (s *ColumnService) attachTask(ctx context.Context, tx repositories.Store, columnID, taskID string) error {
	task, err := tx.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.ParentColumn == columnID {
		return nil
	}
	if err := pullColumnTask(ctx, tx, task.ParentColumn, task.ID); err != nil {
		return err
	}
	task.ParentColumn = columnID
	return tx.Tasks().Update(ctx, task)
}

// DeleteColumn removes the column from its project and deletes its tasks.
func (s *ColumnService) DeleteColumn(ctx context.Context, id string) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		column, err := tx.Columns().GetByID(ctx, id)
		if err != nil {
			return err
		}

		project, err := tx.Projects().GetByID(ctx, column.ParentProject)
		switch {
		case apperrors.IsNotFound(err):
		case err != nil:
			return err
		default:
			project.Columns = models.RemoveID(project.Columns, id)
			if err := tx.Projects().Update(ctx, project); err != nil {
				return err
			}
		}

		return cascadeDeleteColumn(ctx, tx, column)
	})
	if err != nil {
		return err
	}

	log.Printf("Column %s deleted successfully", id)
	return nil
}
