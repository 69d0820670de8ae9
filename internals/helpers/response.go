package helper

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

/* Uniform response envelope: {success:true,data} on the happy path,
   {success:false,error,details?} otherwise. */

func JsonOK(c *fiber.Ctx, data interface{}) error {
	return JsonOKWithCode(c, fiber.StatusOK, data)
}

func JsonCreated(c *fiber.Ctx, data interface{}) error {
	return JsonOKWithCode(c, fiber.StatusCreated, data)
}

func JsonOKWithCode(c *fiber.Ctx, code int, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func JsonError(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func JsonErrorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// JsonValidationError renders validator.v10 failures as one detail entry
// per field.
func JsonValidationError(c *fiber.Ctx, err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return JsonError(c, fiber.StatusBadRequest, "invalid input")
	}

	details := make([]fiber.Map, 0, len(ve))
	for _, fe := range ve {
		details = append(details, fiber.Map{
			"field":   fe.Field(),
			"message": fe.Tag(),
		})
	}
	return JsonErrorWithDetails(c, fiber.StatusBadRequest, "validation failed", details)
}
