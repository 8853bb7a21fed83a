package routes

import (
	"context"
	"net/http"
	"time"

	"marketplace-hub/controllers"
	"marketplace-hub/metrics"
	middlewares "marketplace-hub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Handlers groups the controllers mounted under /api.
type Handlers struct {
	Auth     *controllers.AuthController
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Vendors  *controllers.VendorController
	Admin    *controllers.AdminController
	Requests *controllers.RequestController
}

type Options struct {
	ServiceName   string
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	Authenticator middlewares.Authenticator
	CORSOrigins   []string
	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error
}

func SetupRoutes(r *gin.Engine, h Handlers, opts Options) {
	corsCfg := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(middlewares.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(middlewares.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(middlewares.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	protect := middlewares.AuthMiddleware(opts.Authenticator)

	SetupAuthRoutes(api, h, protect)
	SetupUserRoutes(api, h, protect)
	SetupProductRoutes(api, h, protect)
	SetupOrderRoutes(api, h, protect)
	SetupVendorRoutes(api, h, protect)
	SetupRequestRoutes(api, h, protect)
	SetupAdminRoutes(api, h, protect)
}
