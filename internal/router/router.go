package router

import (
	"database/sql"

	"ims_backend/internal/handlers"
	"ims_backend/internal/middleware"
	"ims_backend/internal/repositories"
	"ims_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	stockRepo := repositories.NewStockRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	billingRepo := repositories.NewBillingRepository(db)

	// One locker shared by both workflows so per-product mutations serialize.
	locker := services.NewProductLocker()
	rates := services.DefaultPricingRates()

	// Initialize Services
	authService := services.NewAuthService(userRepo, db)
	userService := services.NewUserService(userRepo, db)
	productService := services.NewProductService(productRepo, db)
	customerService := services.NewCustomerService(customerRepo, db)
	stockService := services.NewStockService(stockRepo, productRepo, userRepo, customerRepo, billingRepo, locker, rates, db)
	saleService := services.NewSaleService(saleRepo, productRepo, stockRepo, billingRepo, locker, db)
	billingService := services.NewBillingService(billingRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	stockHandler := handlers.NewStockHandler(stockService)
	saleHandler := handlers.NewSaleHandler(saleService)
	billingHandler := handlers.NewBillingHandler(billingService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, userHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupStockRoutes(authenticated, stockHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupBillingRoutes(authenticated, billingHandler)
	}
}
