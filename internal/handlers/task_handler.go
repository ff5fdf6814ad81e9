package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"taskroom/internal/middleware"
	"taskroom/internal/models"
	"taskroom/internal/services"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// RegisterRoutes registers the task routes. Reads and creation require a
// bearer token; updates and deletes do not.
func (h *TaskHandler) RegisterRoutes(router fiber.Router, auth *middleware.Authenticator) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.Post("/", auth.Bearer(h.HandleCreateTask))
	taskRoutes.Get("/", auth.Bearer(h.HandleGetTasks))
	taskRoutes.Get("/:id", auth.Bearer(h.HandleGetTaskByID))
	taskRoutes.Patch("/:id", h.HandleUpdateTask)
	taskRoutes.Delete("/:id", h.HandleDeleteTask)
}

// HandleCreateTask creates a task owned by the principal.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx, principal *models.User) error {
	var input services.CreateTaskInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	task, err := h.service.CreateTask(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"title": task.Title,
		"id":    task.ID,
	})
}

func (h *TaskHandler) HandleGetTasks(c *fiber.Ctx, _ *models.User) error {
	tasks, err := h.service.GetAllTasks(c.UserContext())
	if err != nil {
		return err
	}
	log.Printf("Retrieved %d tasks", len(tasks))
	return c.JSON(tasks)
}

func (h *TaskHandler) HandleGetTaskByID(c *fiber.Ctx, _ *models.User) error {
	task, err := h.service.GetTaskByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (h *TaskHandler) HandleUpdateTask(c *fiber.Ctx) error {
	var input services.UpdateTaskInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := h.service.UpdateTask(c.UserContext(), c.Params("id"), input); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	if err := h.service.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}
