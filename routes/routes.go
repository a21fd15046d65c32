package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phillip/evently-go/auth"
	"github.com/phillip/evently-go/config"
	"github.com/phillip/evently-go/controllers"
	"github.com/phillip/evently-go/metrics"
	"github.com/phillip/evently-go/middleware"
)

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(app *controllers.App, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(app.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	SetupRoutes(r, app, cfg)
	return r
}

func SetupRoutes(r *gin.Engine, app *controllers.App, cfg *config.Config) {
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	authed := middleware.AuthMiddleware(sessions)

	// public
	r.GET("/health", controllers.Health(app))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	events := api.Group("/events")
	{
		events.GET("", controllers.ListEvents(app))
		events.GET("/:id", controllers.GetEvent(app))
		events.GET("/:id/related", controllers.RelatedEvents(app))
		events.POST("", authed, controllers.CreateEvent(app))
		events.PUT("/:id", authed, controllers.UpdateEvent(app))
		events.DELETE("/:id", authed, controllers.DeleteEvent(app))
	}

	api.GET("/users/:id", controllers.GetUser(app))
	api.GET("/users/:id/events", controllers.UserEvents(app))
	api.GET("/categories", controllers.ListCategories(app))
	api.GET("/revalidations", controllers.Revalidation(app))

	// protected
	me := api.Group("/me")
	me.Use(authed)
	{
		me.GET("/events", controllers.MyEvents(app))
		me.GET("/orders", controllers.MyOrders(app))
	}
	api.POST("/orders", authed, controllers.CreateOrder(app))
	api.POST("/categories", authed, controllers.CreateCategory(app))

	// identity provider
	hooks := api.Group("/webhooks")
	hooks.Use(middleware.WebhookSecret(cfg.Auth.WebhookSecret))
	{
		hooks.POST("/users", controllers.UserCreatedWebhook(app))
		hooks.PATCH("/users/:clerkId", controllers.UserUpdatedWebhook(app))
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders: []string{"ETag", "Last-Modified"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
