package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"taskroom/internal/middleware"
	"taskroom/internal/services"
)

// ColumnHandler handles HTTP requests for columns.
type ColumnHandler struct {
	service *services.ColumnService
}

// NewColumnHandler creates a new ColumnHandler.
func NewColumnHandler(service *services.ColumnService) *ColumnHandler {
	return &ColumnHandler{service: service}
}

// RegisterRoutes registers the column routes. None of them require a principal.
func (h *ColumnHandler) RegisterRoutes(router fiber.Router, _ *middleware.Authenticator) {
	columnRoutes := router.Group("/columns")
	columnRoutes.Post("/", h.HandleCreateColumn)
	columnRoutes.Get("/", h.HandleGetColumns)
	columnRoutes.Get("/:id", h.HandleGetColumnByID)
	columnRoutes.Patch("/:id", h.HandleUpdateColumn)
	columnRoutes.Delete("/:id", h.HandleDeleteColumn)
}

func (h *ColumnHandler) HandleCreateColumn(c *fiber.Ctx) error {
	var input services.CreateColumnInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	column, err := h.service.CreateColumn(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(column)
}

func (h *ColumnHandler) HandleGetColumns(c *fiber.Ctx) error {
	columns, err := h.service.GetAllColumns(c.UserContext())
	if err != nil {
		return err
	}
	log.Printf("Retrieved %d columns", len(columns))
	return c.JSON(columns)
}

func (h *ColumnHandler) HandleGetColumnByID(c *fiber.Ctx) error {
	column, err := h.service.GetColumnByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(column)
}

func (h *ColumnHandler) HandleUpdateColumn(c *fiber.Ctx) error {
	var input services.UpdateColumnInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := h.service.UpdateColumn(c.UserContext(), c.Params("id"), input); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ColumnHandler) HandleDeleteColumn(c *fiber.Ctx) error {
	if err := h.service.DeleteColumn(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
