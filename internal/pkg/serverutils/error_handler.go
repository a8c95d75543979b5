package serverutils

import (
	"errors"

	"ai-invoicing-be/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts domain errors bubbling out of handlers into
// HTTP responses. Everything unrecognized becomes a 500 with a generic body.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		switch {
		case apperrors.IsValidation(err):
			status = fiber.StatusBadRequest
			message = err.Error()
		case apperrors.IsNotFound(err):
			status = fiber.StatusNotFound
			message = err.Error()
		case apperrors.IsConflict(err):
			status = fiber.StatusConflict
			message = err.Error()
		case apperrors.IsProvider(err):
			status = fiber.StatusBadGateway
			message = err.Error()
		}

		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
