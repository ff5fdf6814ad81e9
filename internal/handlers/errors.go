package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"taskroom/internal/apperrors"
)

// ErrorHandler is the single place where errors become HTTP responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, kind := statusFor(err)
	message := err.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		message = fiberErr.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"message": message,
		"error":   kind,
	})
}

func statusFor(err error) (int, string) {
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Kind {
		case apperrors.KindValidation, apperrors.KindCast, apperrors.KindConflict:
			return fiber.StatusBadRequest, appErr.Kind.String()
		case apperrors.KindNotFound:
			return fiber.StatusNotFound, appErr.Kind.String()
		case apperrors.KindUnauthorized:
			return fiber.StatusUnauthorized, appErr.Kind.String()
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, utils.StatusMessage(fiberErr.Code)
	}
	return fiber.StatusInternalServerError, apperrors.KindUnknown.String()
}

// parseBody decodes the request body into out, reporting failures as validation errors.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, err, "Invalid request body")
	}
	return nil
}
