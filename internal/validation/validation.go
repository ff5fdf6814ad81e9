package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

// New returns a validator that reports json field names and understands the
// "objectid" tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return models.IsValidID(fl.Field().String())
	})
	return v
}

// Check validates s and converts failures into a ValidationError whose message
// starts with "<entity> validation failed".
func Check(v *validator.Validate, entity string, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate %s: %w", entity, err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fieldMessage(e))
	}
	return apperrors.Validation("%s validation failed: %s", entity, strings.Join(messages, ", "))
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: Path `%s` is required.", field, field)
	case "min":
		return fmt.Sprintf("%s: Path `%s` (`%v`) is shorter than the minimum allowed length (%s).", field, field, e.Value(), e.Param())
	case "max":
		return fmt.Sprintf("%s: Path `%s` (`%v`) is longer than the maximum allowed length (%s).", field, field, e.Value(), e.Param())
	case "email":
		return fmt.Sprintf("%s: Invalid email format", field)
	case "url":
		return fmt.Sprintf("%s: Invalid URL", field)
	case "objectid":
		return fmt.Sprintf("%s: Cast to ObjectId failed for value %q", field, e.Value())
	default:
		return fmt.Sprintf("%s: failed on the '%s' tag", field, e.Tag())
	}
}
