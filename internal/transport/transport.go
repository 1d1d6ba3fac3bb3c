package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/notification-gateway/internal/rabbitMQ"
	"github.com/ds124wfegd/notification-gateway/internal/service"
	"github.com/ds124wfegd/notification-gateway/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(usecase service.NotificationUseCase, queue rabbitMQ.Queue, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Timeout(requestTimeout), gin.Recovery())

	handler := NewNotificationHandler(usecase)

	api := router.Group("/api/v1")
	{
		api.POST("/notifications/", handler.SubmitNotification)
		api.GET("/notifications/:request_id/status/", handler.GetNotificationStatus)
		api.POST("/email/status/", handler.EmailStatusUpdate)
		api.POST("/push/status/", handler.PushStatusUpdate)
	}

	// Liveness endpoint: always 200, broker state is informational.
	router.GET("/health", func(c *gin.Context) {
		broker := "connected"
		if err := queue.HealthCheck(); err != nil {
			broker = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"broker": broker,
		})
	})

	return router
}
