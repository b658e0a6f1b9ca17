package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"fintech-financing/internal/adapters/http/middleware"
	"fintech-financing/internal/adapters/http/routes"
	"fintech-financing/internal/adapters/persistence/models"
	"fintech-financing/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "fintech-financing/docs" // Swagger docs
)

// @title FinTech Financing API
// @version 1.0
// @description Vehicle financing backend: finance records, amortization and the contract signing workflow.

// @contact.name API Support
// @contact.email support@fintech.example

// @license.name MIT

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token issued by the user service.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("failed to auto migrate: %v", err)
	}
	log.Println("database migration completed")

	cache, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "FinTech Financing API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)

	cronService := routes.Setup(app, db, cache, cfg)
	cronService.Start()
	defer cronService.Stop()

	go gracefulShutdown(app)

	log.Printf("server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// gracefulShutdown stops the server on SIGINT/SIGTERM
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("server stopped")
}
