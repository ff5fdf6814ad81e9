package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"taskroom/internal/middleware"
	"taskroom/internal/models"
	"taskroom/internal/services"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	service *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// RegisterRoutes registers the project routes.
func (h *ProjectHandler) RegisterRoutes(router fiber.Router, auth *middleware.Authenticator) {
	projectRoutes := router.Group("/projects")
	projectRoutes.Post("/", auth.Bearer(h.HandleCreateProject))
	projectRoutes.Get("/", h.HandleGetProjects)
	projectRoutes.Get("/data/:id", h.HandleGetProjectData)
	projectRoutes.Get("/:id", h.HandleGetProjectByID)
	projectRoutes.Patch("/:id", h.HandleUpdateProject)
	projectRoutes.Delete("/:id", h.HandleDeleteProject)
}

// HandleCreateProject creates a project owned by the principal.
func (h *ProjectHandler) HandleCreateProject(c *fiber.Ctx, principal *models.User) error {
	var input services.CreateProjectInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	project, err := h.service.CreateProject(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("%s created successfully!", project.ID),
	})
}

func (h *ProjectHandler) HandleGetProjects(c *fiber.Ctx) error {
	projects, err := h.service.GetAllProjects(c.UserContext())
	if err != nil {
		return err
	}
	log.Printf("Retrieved %d projects", len(projects))
	return c.JSON(projects)
}

func (h *ProjectHandler) HandleGetProjectByID(c *fiber.Ctx) error {
	project, err := h.service.GetProjectByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(project)
}

// HandleGetProjectData returns the project with its columns and task titles.
func (h *ProjectHandler) HandleGetProjectData(c *fiber.Ctx) error {
	data, err := h.service.GetProjectData(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(data)
}

func (h *ProjectHandler) HandleUpdateProject(c *fiber.Ctx) error {
	var input services.UpdateProjectInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := h.service.UpdateProject(c.UserContext(), c.Params("id"), input); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProjectHandler) HandleDeleteProject(c *fiber.Ctx) error {
	if err := h.service.DeleteProject(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Project deleted successfully"})
}
