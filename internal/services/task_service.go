package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/models"
	"taskroom/internal/repositories"
	"taskroom/internal/validation"
)

// TaskService handles business logic related to tasks.
type TaskService struct {
	store    repositories.Store
	validate *validator.Validate
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(store repositories.Store) *TaskService {
	return &TaskService{
		store:    store,
		validate: validation.New(),
		now:      time.Now,
	}
}

// CreateTask appends a new task created by principal to an existing column.
func (s *TaskService) CreateTask(ctx context.Context, principal *models.User, input CreateTaskInput) (*models.Task, error) {
	now := s.now()
	task := &models.Task{
		ID:           models.NewID(),
		ParentColumn: strings.TrimSpace(input.ParentColumn),
		Title:        strings.TrimSpace(input.Title),
		Content:      input.Content,
		CreatedBy:    principal.ID,
		CreatedAt:    now,
		DueAt:        now.Add(models.DefaultDueIn),
		AssignedTo:   input.AssignedTo,
	}
	if input.DueAt != nil {
		task.DueAt = *input.DueAt
	}
	if err := validation.Check(s.validate, "Task", task); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		column, err := tx.Columns().GetByID(ctx, task.ParentColumn)
		if err != nil {
			return err
		}
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		column.Tasks = models.AddID(column.Tasks, task.ID)
		if err := tx.Columns().Update(ctx, column); err != nil {
			return err
		}

		if err := pushUserRef(ctx, tx, task.CreatedBy, ownedTasks, task.ID); err != nil {
			return err
		}
		if task.AssignedTo != "" {
			return pushUserRef(ctx, tx, task.AssignedTo, joinedTasks, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Task %s created successfully", task.ID)
	return task, nil
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	return s.store.Tasks().GetAll(ctx)
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	if err := models.ParseID(id, "_id"); err != nil {
		return nil, err
	}
	return s.store.Tasks().GetByID(ctx, id)
}

// UpdateTask applies a partial update and stamps last_modified_at. A new
// parent column takes the task over from the old one.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous := *task

		if input.ParentColumn != nil {
			task.ParentColumn = strings.TrimSpace(*input.ParentColumn)
		}
		if input.Title != nil {
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Content != nil {
			task.Content = *input.Content
		}
		if input.CreatedBy != nil {
			task.CreatedBy = *input.CreatedBy
		}
		if input.AssignedTo != nil {
			task.AssignedTo = *input.AssignedTo
		}
		if input.DueAt != nil {
			task.DueAt = *input.DueAt
		}
		if input.Comment != nil {
			task.Comment = *input.Comment
		}
		modified := s.now()
		task.LastModifiedAt = &modified

		if err := validation.Check(s.validate, "Task", task); err != nil {
			return err
		}

		if task.ParentColumn != previous.ParentColumn {
			column, err := tx.Columns().GetByID(ctx, task.ParentColumn)
			if err != nil {
				return err
			}
			if err := pullColumnTask(ctx, tx, previous.ParentColumn, task.ID); err != nil {
				return err
			}
			column.Tasks = models.AddID(column.Tasks, task.ID)
			if err := tx.Columns().Update(ctx, column); err != nil {
				return err
			}
		}
		if err := moveUserRef(ctx, tx, previous.CreatedBy, task.CreatedBy, ownedTasks, task.ID); err != nil {
			return err
		}
		if err := moveUserRef(ctx, tx, previous.AssignedTo, task.AssignedTo, joinedTasks, task.ID); err != nil {
			return err
		}

		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return err
	}

	log.Printf("Task %s updated successfully", id)
	return nil
}

// DeleteTask removes the task from its column and deletes it.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := pullColumnTask(ctx, tx, task.ParentColumn, task.ID); err != nil {
			return err
		}
		if err := detachTaskFromUsers(ctx, tx, task); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("Task %s deleted successfully", id)
	return nil
}
