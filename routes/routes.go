package routes

import (
	"time"

	"medichat/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, ah *handlers.AssistantHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := r.Group("/api/assistant")
	{
		api.POST("/execute", ah.ExecuteTurn)
		api.POST("/simulate", ah.RunSimulation)
	}

	r.GET("/health", ah.HealthHandler)
}
