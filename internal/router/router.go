package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pingmaster-dev/pingmaster/internal/handlers"
	"github.com/pingmaster-dev/pingmaster/internal/middleware"
	"github.com/pingmaster-dev/pingmaster/internal/scheduler"
	"github.com/pingmaster-dev/pingmaster/internal/types"
	"github.com/pingmaster-dev/pingmaster/internal/ws"
)

func NewRouter(sched *scheduler.Scheduler, hub *ws.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(sched))
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket(hub))

		auth := api.Group("/auth")
		{
			auth.POST("/sign-up", handlers.SignUp)
			auth.POST("/sign-in", handlers.SignIn)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		services := api.Group("/services", middleware.AuthMiddleware())
		{
			services.POST("", handlers.CreateService)
			services.GET("", handlers.ListServices)
			services.PUT("/:service_id", handlers.UpdateService)
			services.DELETE("/:service_id", handlers.DeleteService)

			services.GET("/:service_id/stats", handlers.GetServiceStats)

			services.POST("/:service_id/notifications", handlers.UpsertPreference)
			services.PUT("/:service_id/notifications", handlers.UpsertPreference)
			services.GET("/:service_id/notifications", handlers.GetPreference)
		}
	}

	return r
}
