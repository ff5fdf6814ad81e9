package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
	"taskroom/internal/validation"
)

// UserService handles business logic related to users.
type UserService struct {
	store    repositories.Store
	hasher   *PasswordHasher
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(store repositories.Store, hasher *PasswordHasher) *UserService {
	return &UserService{
		store:    store,
		hasher:   hasher,
		validate: validation.New(),
	}
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.Password == "" {
		return nil, apperrors.Validation("User validation failed: password: Path `password` is required.")
	}
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       strings.TrimSpace(input.Username),
		Email:          strings.TrimSpace(input.Email),
		HashedPassword: hashed,
		AvatarURL:      input.AvatarURL,
	}
	if err := validation.Check(s.validate, "User", user); err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User %s created successfully", user.ID)
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().GetAll(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := models.ParseID(id, "_id"); err != nil {
		return nil, err
	}
	return s.store.Users().GetByID(ctx, id)
}

// UpdateUser applies a partial update. A changed email must be verified again.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != user.Email {
			user.Email = email
			user.EmailVerified = false
		}
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if err := validation.Check(s.validate, "User", user); err != nil {
		return err
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return apperrors.Conflict("Email %s is already in use", user.Email)
		}
		return err
	}

	log.Printf("User %s updated successfully", id)
	return nil
}

// DeleteUser removes the user only; projects and tasks keep their references.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := models.ParseID(id, "_id"); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("User %s deleted successfully", id)
	return nil
}

// ProjectsForUser returns the principal's owned and joined projects keyed by id.
func (s *UserService) ProjectsForUser(ctx context.Context, principal *models.User) (map[string]ProjectSummary, error) {
	user, err := s.store.Users().GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	ids := append(models.CopyIDs(user.OwnedProjects), user.JoinedProjects...)
	projects, err := s.store.Projects().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects for user %s: %w", user.ID, err)
	}

	summaries := make(map[string]ProjectSummary, len(projects))
	for _, p := range projects {
		summaries[p.ID] = ProjectSummary{
			Columns:   p.Columns,
			CreatedBy: p.CreatedBy,
			CreatedAt: p.CreatedAt,
			Members:   p.Members,
			Name:      p.Name,
			Profile:   p.Profile,
		}
	}
	log.Printf("%d projects for user %s retrieved successfully", len(summaries), user.ID)
	return summaries, nil
}
