package routes

import (
	middlewares "marketplace-hub/middleware"
	"marketplace-hub/models"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/profile", protect, h.Auth.Profile)
}

func SetupUserRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	users := api.Group("/users", protect)
	users.GET("/profile", h.Users.GetProfile)
	users.PUT("/profile", h.Users.UpdateProfile)
	users.PUT("/password", h.Users.ChangePassword)
}

func SetupProductRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	products := api.Group("/products")
	products.GET("", h.Products.List)
	products.GET("/categories", h.Products.Categories)
	products.GET("/:id", h.Products.Get)
	products.POST("", protect, middlewares.RequireRoles(models.RoleVendor), h.Products.Create)
	products.PUT("/:id", protect, h.Products.Update)
	products.DELETE("/:id", protect, h.Products.Delete)
	products.POST("/:id/images", protect, h.Products.UploadImages)
}

func SetupOrderRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	orders := api.Group("/orders", protect)
	orders.POST("", h.Orders.Place)
	orders.GET("/myorders", h.Orders.ListMine)
	orders.GET("/:id", h.Orders.Get)
	orders.PUT("/:id/status", h.Orders.UpdateStatus)
}

func SetupVendorRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	vendors := api.Group("/vendors", protect, middlewares.RequireRoles(models.RoleVendor))
	vendors.GET("/profile", h.Vendors.GetProfile)
	vendors.PUT("/profile", h.Vendors.UpdateProfile)
	vendors.GET("/orders", h.Orders.ListForVendor)
	vendors.PUT("/orders/:orderId/status", h.Orders.UpdateStatus)
}

func SetupRequestRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	requests := api.Group("/requests", protect)
	requests.POST("", h.Requests.Create)
	requests.GET("/mine", h.Requests.ListMine)
}

func SetupAdminRoutes(api *gin.RouterGroup, h Handlers, protect gin.HandlerFunc) {
	admin := api.Group("/admin", protect, middlewares.RequireRoles(models.RoleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id/status", h.Admin.SetUserStatus)
	admin.GET("/vendors", h.Admin.ListVendors)
	admin.PUT("/vendors/:id/verify", h.Admin.VerifyVendor)
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/requests", h.Admin.ListRequests)
	admin.PUT("/requests/:id/status", h.Admin.SetRequestStatus)
}
