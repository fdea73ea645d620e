package handlers

import (
	"woodoctor/internal/app"
	"woodoctor/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.AuthService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))

	// User profile routes
	profileAuth := protected.Group("/auth")
	profileAuth.PUT("/profile", authHandler.UpdateProfile)
	profileAuth.PUT("/change-password", authHandler.ChangePassword)

	// Store connections
	storeHandler := NewStoreHandler(services.StoreService)
	stores := protected.Group("/stores")
	stores.GET("", storeHandler.List)
	stores.POST("", storeHandler.Create)
	stores.GET("/:id", storeHandler.Get)
	stores.PUT("/:id", storeHandler.Update)
	stores.DELETE("/:id", storeHandler.Delete)
	stores.POST("/:id/test", storeHandler.TestConnection)
	stores.POST("/:id/connect", storeHandler.Connect)

	// Import files: upload, field detection, mapping, preview, staging
	importFileHandler := NewImportFileHandler(services.ImportService, services.ImportFileRepo)
	importFiles := protected.Group("/import-files")
	importFiles.POST("", importFileHandler.Upload)
	importFiles.GET("", importFileHandler.List)
	importFiles.DELETE("/:id", importFileHandler.Delete)
	importFiles.GET("/:id/fields", importFileHandler.DetectFields)
	importFiles.GET("/:id/mapping", importFileHandler.GetMapping)
	importFiles.PUT("/:id/mapping", importFileHandler.SaveMapping)
	importFiles.POST("/:id/mapping/auto", importFileHandler.AutoMap)
	importFiles.GET("/:id/preview", importFileHandler.Preview)
	importFiles.POST("/:id/stage", importFileHandler.Stage)

	// Staged products awaiting import
	stagedHandler := NewStagedProductHandler(services.StagedRepo)
	staged := protected.Group("/staged-products")
	staged.GET("", stagedHandler.List)
	staged.DELETE("", stagedHandler.DeleteAll)
	staged.GET("/:id", stagedHandler.Get)
	staged.PUT("/:id", stagedHandler.Update)
	staged.DELETE("/:id", stagedHandler.Delete)

	// Import runs
	runHandler := NewImportRunHandler(services.ImportRunService, services.ProgressBroker)
	runs := protected.Group("/import-runs")
	runs.POST("", runHandler.Start)
	runs.GET("", runHandler.List)
	runs.POST("/cancel", runHandler.Cancel)
	runs.GET("/progress", runHandler.Progress)
	runs.GET("/:id", runHandler.Get)

	// Remote catalog of the connected store
	productHandler := NewProductHandler(services.StoreService, services.BulkPriceService, services.FieldService)
	products := protected.Group("/products")
	products.GET("", productHandler.List)
	products.POST("/bulk-price", productHandler.BulkPriceUpdate)
	products.GET("/fields", productHandler.Fields)
	products.POST("/fields/refresh", productHandler.RefreshFields)
	products.DELETE("/:id", productHandler.Delete)

	// Remote categories
	categoryHandler := NewCategoryHandler(services.StoreService)
	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.POST("", categoryHandler.Create)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)
}
