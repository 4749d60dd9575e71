package handlers

import (
	"errors"
	"mime"
	"strings"

	"github.com/fileshare/fileshare/internal/services"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func getRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}

// respondError maps service error kinds to HTTP statuses. Unknown errors are
// logged and reported as 500 without their message.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Error("request_failed", err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": getRequestID(c),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrUnsupportedType),
		errors.Is(err, services.ErrTooLarge):
		return utils.Error(c, fiber.StatusBadRequest, svcErr.Message)
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Error(c, fiber.StatusUnauthorized, svcErr.Message)
	case errors.Is(err, services.ErrForbidden):
		return utils.Error(c, fiber.StatusForbidden, svcErr.Message)
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, svcErr.Message)
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, svcErr.Message)
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// respondMutationError reports a non-owner the same way as a missing file.
func respondMutationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrForbidden) {
		return utils.Error(c, fiber.StatusNotFound, "file not found")
	}
	return respondError(c, err)
}

func contentDisposition(disposition, filename string) string {
	if value := mime.FormatMediaType(disposition, map[string]string{"filename": filename}); value != "" {
		return value
	}
	return disposition
}
