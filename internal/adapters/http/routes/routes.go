package routes

import (
	"elibrary-backend/internal/adapters/http/handlers"
	"elibrary-backend/internal/adapters/http/middleware"
	"elibrary-backend/internal/adapters/persistence/repositories"
	"elibrary-backend/internal/config"
	"elibrary-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	catalogService := services.NewCatalogService(db, bookRepo, borrowRepo)
	borrowService := services.NewBorrowService(db, bookRepo, borrowRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	bookHandler := handlers.NewBookHandler(catalogService)
	loanHandler := handlers.NewLoanHandler(borrowService)
	adminHandler := handlers.NewAdminHandler(catalogService, borrowService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, stricter rate limit on credential endpoints)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Book routes (authenticated readers)
	bookRoutes := apiV1.Group("/books")
	bookRoutes.Use(middleware.AuthMiddleware(cfg))
	bookRoutes.Get("/", bookHandler.ListAvailable)
	bookRoutes.Get("/:id", bookHandler.Get)
	bookRoutes.Post("/:id/borrow", loanHandler.Borrow)

	// Loan routes (authenticated readers)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Get("/my", loanHandler.MyLoans)
	loanRoutes.Post("/:id/return", loanHandler.Return)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/panel", adminHandler.Panel)
	adminRoutes.Get("/loans/overdue", adminHandler.OverdueLoans)
	adminRoutes.Post("/books", bookHandler.Add)
	adminRoutes.Delete("/books/:id", bookHandler.Delete)
}
