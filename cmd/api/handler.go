package api

import (
	authUsecase "schoolapp/internal/auth/usecase"
	"schoolapp/internal/notification/scheduler"
	notificationUsecase "schoolapp/internal/notification/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase         authUsecase.AuthUsecase
	notificationUsecase notificationUsecase.NotificationUsecase
	scheduler           *scheduler.Scheduler
	device              *DeviceHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, notificationUc notificationUsecase.NotificationUsecase, s *scheduler.Scheduler, device *DeviceHandler) *Handler {
	return &Handler{
		authUsecase:         authUc,
		notificationUsecase: notificationUc,
		scheduler:           s,
		device:              device,
	}
}

// Engine builds the gin engine with middleware and routes.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.notificationUsecase, h.scheduler, h.device)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Engine().Run(addr)
}
