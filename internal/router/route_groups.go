package router

import (
	"ims_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.Me)
}

func SetupUserRoutes(rg *gin.RouterGroup, userHandler *handlers.UserHandler) {
	users := rg.Group("/users")
	{
		users.GET("", userHandler.GetUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.PATCH("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}

func SetupProductRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProductByID)
		products.PATCH("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}
}

func SetupCustomerRoutes(rg *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customers := rg.Group("/customers")
	{
		customers.POST("", customerHandler.CreateCustomer)
		customers.GET("", customerHandler.GetCustomers)
		customers.GET("/:id", customerHandler.GetCustomerByID)
		customers.PATCH("/:id", customerHandler.UpdateCustomer)
		customers.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}

func SetupStockRoutes(rg *gin.RouterGroup, stockHandler *handlers.StockHandler) {
	stockIn := rg.Group("/stock-in")
	{
		stockIn.POST("", stockHandler.CreateStockIn)
		stockIn.GET("", stockHandler.GetStockIns)
		stockIn.GET("/:id", stockHandler.GetStockInByID)
		stockIn.PATCH("/:id", stockHandler.UpdateStockIn)
		stockIn.DELETE("/:id", stockHandler.DeleteStockIn)
	}

	balances := rg.Group("/stock-balances")
	{
		balances.POST("", stockHandler.CreateStockBalance)
		balances.GET("", stockHandler.GetStockBalances)
		balances.GET("/:id", stockHandler.GetStockBalanceByID)
		balances.GET("/product/:product_id", stockHandler.GetStockBalanceByProductID)
		balances.PATCH("/:id", stockHandler.UpdateStockBalance)
		balances.DELETE("/:id", stockHandler.DeleteStockBalance)
	}
}

func SetupSaleRoutes(rg *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	sales := rg.Group("/sales")
	{
		sales.POST("", saleHandler.CreateSale)
		sales.GET("", saleHandler.GetSales)
		sales.GET("/:id", saleHandler.GetSaleByID)
	}
}

func SetupBillingRoutes(rg *gin.RouterGroup, billingHandler *handlers.BillingHandler) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", billingHandler.CreateInvoice)
		invoices.GET("", billingHandler.GetInvoices)
		invoices.GET("/:id", billingHandler.GetInvoiceByID)
		invoices.PATCH("/:id", billingHandler.UpdateInvoice)
		invoices.DELETE("/:id", billingHandler.DeleteInvoice)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", billingHandler.CreatePayment)
		payments.GET("", billingHandler.GetPayments)
		payments.GET("/:id", billingHandler.GetPaymentByID)
		payments.PATCH("/:id", billingHandler.UpdatePayment)
		payments.DELETE("/:id", billingHandler.DeletePayment)
	}
}
