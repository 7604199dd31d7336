package controllers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldError is one failing field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func respondValidation(c *fiber.Ctx, fields []FieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   "validation_error",
		"message": "Request validation failed",
		"fields":  fields,
	})
}

// parseAndValidate decodes the JSON body into dst and runs its validate tags.
// It writes the 422 response itself and returns ok=false when the body is bad.
func parseAndValidate(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, respondValidation(c, []FieldError{{Field: "body", Message: "invalid JSON body"}})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, respondValidation(c, fieldErrors(verrs))
		}
		return false, respondValidation(c, []FieldError{{Field: "body", Message: err.Error()}})
	}
	return true, nil
}

func fieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "url", "http_url":
		return "value is not a valid URL"
	case "min":
		return "must have at least " + fe.Param() + " items or characters"
	case "max":
		return "must have at most " + fe.Param() + " items or characters"
	default:
		return "failed on " + fe.Tag()
	}
}
