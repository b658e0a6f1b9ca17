package routes

import (
	"fintech-financing/internal/adapters/http/handlers"
	"fintech-financing/internal/adapters/http/middleware"
	"fintech-financing/internal/adapters/persistence/repositories"
	"fintech-financing/internal/config"
	"fintech-financing/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and registers all routes
func Setup(app *fiber.App, db *gorm.DB, cache *redis.Client, cfg *config.Config) *services.CronService {
	// Repositories
	financeRepo := repositories.NewFinanceRepository(db)
	contractRepo := repositories.NewContractRepository(db)

	// External collaborators
	identityService := services.NewIdentityService(cfg.Services.UserServiceURL, cache)
	emailService := services.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)

	var points services.PointsNotifier
	if cfg.Services.PointsServiceURL != "" {
		points = services.NewPointsService(cfg.Services.PointsServiceURL)
	}
	var vehicles services.VehicleLookup
	if cfg.Services.VehicleAPIURL != "" {
		vehicles = services.NewVehicleService(cfg.Services.VehicleAPIURL)
	}

	// Core services
	contractService := services.NewContractService(financeRepo, contractRepo, points, emailService, identityService)
	financeService := services.NewFinanceService(financeRepo, vehicles, contractService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	financeHandler := handlers.NewFinanceHandler(financeService)
	contractHandler := handlers.NewContractHandler(contractService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1, everything behind token introspection
	apiV1 := app.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(identityService))
	RegisterFinanceRoutes(apiV1, financeHandler, contractHandler)

	return services.NewCronService(contractService)
}

// RegisterFinanceRoutes registers the finance endpoints on a router. Split
// out so handler tests can mount them behind a stub introspector.
func RegisterFinanceRoutes(router fiber.Router, financeHandler *handlers.FinanceHandler, contractHandler *handlers.ContractHandler) {
	finances := router.Group("/finances")
	finances.Post("/", financeHandler.Create)
	finances.Get("/", financeHandler.List)
	finances.Get("/:id", financeHandler.GetByID)
	finances.Put("/:id", financeHandler.Update)
	finances.Patch("/:id/restore", financeHandler.Restore)
	finances.Patch("/:id/status", financeHandler.SetStatus)
	finances.Patch("/:id", financeHandler.Update)
	finances.Delete("/:id", financeHandler.Delete)
	finances.Get("/:id/schedule", financeHandler.Schedule)
	finances.Post("/:id/sign-contract", contractHandler.Sign)
}
