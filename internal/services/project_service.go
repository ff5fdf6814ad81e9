package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
	"taskroom/internal/validation"
)

// ProjectService handles business logic related to projects.
type ProjectService struct {
	store    repositories.Store
	validate *validator.Validate
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store repositories.Store) *ProjectService {
	return &ProjectService{
		store:    store,
		validate: validation.New(),
	}
}

// CreateProject creates a project owned by principal and links its members.
func (s *ProjectService) CreateProject(ctx context.Context, principal *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := models.ParseIDs(input.Members, "members"); err != nil {
		return nil, err
	}
	project := &models.Project{
		ID:        models.NewID(),
		Name:      strings.TrimSpace(input.Name),
		Profile:   input.Profile,
		CreatedBy: principal.ID,
		CreatedAt: time.Now(),
		Columns:   models.IDList{},
		Members:   models.Dedupe(input.Members),
	}
	if err := validation.Check(s.validate, "Project", project); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		for _, member := range project.Members {
			if err := pushUserRef(ctx, tx, member, joinedProjects, project.ID); err != nil {
				return err
			}
		}
		if err := tx.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return pushUserRef(ctx, tx, principal.ID, ownedProjects, project.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Project %s created successfully", project.ID)
	return project, nil
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	return s.store.Projects().GetAll(ctx)
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if err := models.ParseID(id, "_id"); err != nil {
		return nil, err
	}
	return s.store.Projects().GetByID(ctx, id)
}

// GetProjectData returns the project with its columns, in board order, and
// the id and title of every task they hold.
func (s *ProjectService) GetProjectData(ctx context.Context, id string) (*ProjectData, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := s.store.Columns().GetByIDs(ctx, project.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of project %s: %w", id, err)
	}
	columnByID := make(map[string]models.Column, len(columns))
	for _, c := range columns {
		columnByID[c.ID] = c
	}

	data := &ProjectData{
		ID:        project.ID,
		Name:      project.Name,
		Profile:   project.Profile,
		CreatedBy: project.CreatedBy,
		CreatedAt: project.CreatedAt,
		Columns:   []ColumnData{},
		Members:   project.Members,
	}
	for _, columnID := range project.Columns {
		column, ok := columnByID[columnID]
		if !ok {
			continue
		}
		tasks, err := s.store.Tasks().GetByIDs(ctx, column.Tasks)
		if err != nil {
			return nil, fmt.Errorf("failed to get tasks of column %s: %w", columnID, err)
		}
		titleByID := make(map[string]string, len(tasks))
		for _, t := range tasks {
			titleByID[t.ID] = t.Title
		}

		entry := ColumnData{ID: column.ID, Name: column.Name, Tasks: []TaskTitle{}}
		for _, taskID := range column.Tasks {
			if title, ok := titleByID[taskID]; ok {
				entry.Tasks = append(entry.Tasks, TaskTitle{ID: taskID, Title: title})
			}
		}
		data.Columns = append(data.Columns, entry)
	}
	return data, nil
}

// UpdateProject applies a partial update. Columns may only be reordered;
// member and owner changes are mirrored on the users involved.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input UpdateProjectInput) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}
	if input.CreatedBy != nil && *input.CreatedBy != "" {
		if err := models.ParseID(*input.CreatedBy, "created_by"); err != nil {
			return err
		}
	}
	if input.Members != nil {
		if err := models.ParseIDs(*input.Members, "members"); err != nil {
			return err
		}
	}
	if input.Columns != nil {
		if err := models.ParseIDs(*input.Columns, "columns"); err != nil {
			return err
		}
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		project, err := tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			project.Name = strings.TrimSpace(*input.Name)
		}
		if input.Profile != nil {
			project.Profile = *input.Profile
		}
		if input.Columns != nil {
			columns := models.Dedupe(*input.Columns)
			if len(columns) != len(*input.Columns) || len(columns) != len(project.Columns) ||
				len(models.Difference(columns, project.Columns)) > 0 {
				return apperrors.Validation("Project validation failed: columns: columns can only be reordered; create or delete columns instead")
			}
			project.Columns = columns
		}
		if err := validation.Check(s.validate, "Project", project); err != nil {
			return err
		}

		if input.CreatedBy != nil {
			if err := moveUserRef(ctx, tx, project.CreatedBy, *input.CreatedBy, ownedProjects, project.ID); err != nil {
				return err
			}
			project.CreatedBy = *input.CreatedBy
		}
		if input.Members != nil {
			members := models.Dedupe(*input.Members)
			for _, removed := range models.Difference(project.Members, members) {
				if err := pullUserRef(ctx, tx, removed, joinedProjects, project.ID); err != nil {
					return err
				}
			}
			for _, added := range models.Difference(members, project.Members) {
				if err := pushUserRef(ctx, tx, added, joinedProjects, project.ID); err != nil {
					return err
				}
			}
			project.Members = members
		}

		return tx.Projects().Update(ctx, project)
	})
	if err != nil {
		return err
	}

	log.Printf("Project %s updated successfully", id)
	return nil
}

// DeleteProject deletes the project, its columns and their tasks, and drops
// the project from its owner's and members' collections.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		project, err := tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}

		children, err := tx.Columns().ListByProject(ctx, id)
		if err != nil {
			return err
		}
		listed, err := tx.Columns().GetByIDs(ctx, project.Columns)
		if err != nil {
			return err
		}
		deleted := models.IDList{}
		for _, column := range append(children, listed...) {
			if models.HasID(deleted, column.ID) {
				continue
			}
			deleted = append(deleted, column.ID)
			if err := cascadeDeleteColumn(ctx, tx, &column); err != nil {
				return err
			}
		}

		if err := pullUserRef(ctx, tx, project.CreatedBy, ownedProjects, id); err != nil {
			return err
		}
		for _, member := range project.Members {
			if err := pullUserRef(ctx, tx, member, joinedProjects, id); err != nil {
				return err
			}
		}
		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("Project %s deleted successfully", id)
	return nil
}
