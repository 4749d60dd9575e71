package handlers

import (
	"github.com/fileshare/fileshare/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the HTTP API on app.
func RegisterRoutes(app *fiber.App, authHandler *AuthHandler, filesHandler *FilesHandler, authMiddleware *middleware.AuthMiddleware) {
	app.Get("/health", Health)
	app.Get("/uploads/:storedName", filesHandler.Raw)

	api := app.Group("/api")
	api.Get("/health", Health)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/password", authMiddleware.RequireAuth, authHandler.ChangePassword)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", filesHandler.Upload)
	fileRoutes.Get("/", filesHandler.List)
	fileRoutes.Get("/:id/download", filesHandler.Download)
	fileRoutes.Get("/:id/raw-url", filesHandler.RawURL)
	fileRoutes.Post("/:id/share", filesHandler.Share)
	fileRoutes.Delete("/:id/shares/:userId", filesHandler.Unshare)
	fileRoutes.Post("/:id/link", filesHandler.IssueLink)
	fileRoutes.Delete("/:id/link", filesHandler.RevokeLink)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Delete("/:id", filesHandler.Delete)
}
