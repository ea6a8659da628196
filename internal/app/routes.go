package app

import (
	"taskflow/internal/auth"
	"taskflow/internal/config"
	"taskflow/internal/handlers"
	"taskflow/internal/repo"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, a *App) {
	r.GET("/", rootHandler(a.cfg))
	r.GET("/health", healthHandler(a))
	r.GET("/version", versionHandler(a.cfg))
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	sessionStore := auth.NewStore(a.redis, a.cfg.Session.TTL.Duration())
	api := r.Group("/api/v1", auth.EnsureSession(sessionStore, int(sessionStore.TTL().Seconds())))

	userSvc := service.NewUserService(repo.NewPGUserRepo(a.db))
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc, a, a.log)
	registerAuthRoutes(api, authHandler)

	taskHandler := handlers.NewTaskHandler(a.homes)
	registerTaskRoutes(api, taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Taskflow API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"metrics": "/metrics",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": a.cfg.App.Env, "sessions": a.homes.Len()})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.POST("/tasks/reload", h.Reload)
	api.PATCH("/tasks/:id", h.Update)
	api.POST("/tasks/:id/toggle", h.Toggle)
	api.DELETE("/tasks/:id", h.Delete)
	api.GET("/stats", h.Stats)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
}
