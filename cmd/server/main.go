package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fileshare/fileshare/internal/config"
	"github.com/fileshare/fileshare/internal/database"
	"github.com/fileshare/fileshare/internal/handlers"
	"github.com/fileshare/fileshare/internal/middleware"
	"github.com/fileshare/fileshare/internal/services"
	"github.com/fileshare/fileshare/internal/storage"
	"github.com/fileshare/fileshare/internal/store"
	"github.com/fileshare/fileshare/pkg/logger"
	"github.com/fileshare/fileshare/pkg/signedurl"
	"github.com/fileshare/fileshare/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger.Init()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if err := objects.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed preparing %s storage: %v", objects.Backend(), err)
	}

	publicBaseURL := cfg.Server.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}

	users := store.NewUserStore(db)
	files := store.NewFileStore(db)

	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	signer := signedurl.New(cfg.JWT.Secret, cfg.Link.RawURLTTL)

	authService := services.NewAuthService(users, tokens)
	uploadService := services.NewUploadService(files, objects, cfg.Upload)
	fileService := services.NewFileService(files, users, objects, services.NewAccessEvaluator(), signer, publicBaseURL, cfg.Link)

	authHandler := handlers.NewAuthHandler(authService)
	filesHandler := handlers.NewFilesHandler(uploadService, fileService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Upload.BodyLimit()})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(app, authHandler, filesHandler, authMiddleware)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"public_base_url": publicBaseURL,
		"db_driver":       cfg.DB.Driver,
		"storage":         objects.Backend(),
		"body_limit":      cfg.Upload.BodyLimit(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
