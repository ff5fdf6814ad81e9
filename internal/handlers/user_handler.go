package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"taskroom/internal/middleware"
	"taskroom/internal/models"
	"taskroom/internal/services"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the user routes. The fixed paths come before /:id.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth *middleware.Authenticator) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/projects", auth.Bearer(h.HandleGetProjectsForUser))
	userRoutes.Get("/profile", auth.Bearer(h.HandleGetProfile))
	userRoutes.Get("/:id", auth.Bearer(h.HandleGetUserByID))
	userRoutes.Patch("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("%s created successfully", user.ID),
	})
}

func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	log.Printf("Retrieved %d users", len(users))
	return c.JSON(users)
}

func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx, _ *models.User) error {
	user, err := h.service.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleGetProfile returns the authenticated user.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx, principal *models.User) error {
	return c.JSON(principal)
}

// HandleGetProjectsForUser returns the principal's owned and joined projects keyed by id.
func (h *UserHandler) HandleGetProjectsForUser(c *fiber.Ctx, principal *models.User) error {
	projects, err := h.service.ProjectsForUser(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(projects)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var input services.UpdateUserInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := h.service.UpdateUser(c.UserContext(), c.Params("id"), input); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
