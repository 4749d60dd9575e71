package middleware

import (
	"errors"
	"strings"

	"github.com/fileshare/fileshare/internal/models"
	"github.com/fileshare/fileshare/internal/services"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const currentUserKey = "currentUser"

type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

func CORS(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	})
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("jwt_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	tokenString = strings.TrimSpace(tokenString)
	if !ok || tokenString == "" {
		logger.Warn("jwt_invalid_format", map[string]interface{}{
			"ip":          c.IP(),
			"path":        c.Path(),
			"auth_header": authHeader[:min(len(authHeader), 20)] + "...",
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	user, err := a.Auth.VerifyToken(c.UserContext(), tokenString)
	if err != nil {
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			return utils.Error(c, fiber.StatusUnauthorized, svcErr.Message)
		}
		return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	c.Locals(currentUserKey, user)
	c.Locals(logger.UserIDKey, user.ID.String())
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
