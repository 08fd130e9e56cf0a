package api

import (
	"net/http"

	"schoolapp/internal/auth/delivery"
	authUsecase "schoolapp/internal/auth/usecase"
	notificationDelivery "schoolapp/internal/notification/delivery"
	"schoolapp/internal/notification/scheduler"
	notificationUsecase "schoolapp/internal/notification/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, notificationUsecase notificationUsecase.NotificationUsecase, s *scheduler.Scheduler, deviceHandler *DeviceHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	notificationHandler := notificationDelivery.NewNotificationHandler(notificationUsecase)
	scheduleHandler := notificationDelivery.NewScheduleHandler(s)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", delivery.SessionMiddleware(authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
			auth.DELETE("/students/:authCode", delivery.SessionMiddleware(authUsecase), authHandler.RemoveStudent)
		}

		// Device routes
		device := api.Group("/device")
		{
			device.GET("", deviceHandler.GetStatus)
			device.POST("/permission", deviceHandler.RunPermissionFlow)
			device.PUT("/token", deviceHandler.RefreshToken)
		}

		// Local notification history and inbound messages (no session required)
		notifications := api.Group("/notifications")
		{
			notifications.GET("/history", notificationHandler.GetHistory)
			notifications.PATCH("/history/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/history/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/history", notificationHandler.ClearHistory)
			notifications.POST("/inbound", notificationHandler.Receive)
		}

		// Backend notifications (protected)
		remote := api.Group("/notifications/remote")
		remote.Use(delivery.SessionMiddleware(authUsecase))
		{
			remote.GET("", notificationHandler.GetRemote)
			remote.PATCH("/:id/read", notificationHandler.MarkRemoteRead)
			remote.PUT("/read-all", notificationHandler.MarkAllRemoteRead)
			remote.GET("/categories", notificationHandler.GetCategories)
			remote.GET("/statistics", notificationHandler.GetStatistics)
			remote.POST("/send", notificationHandler.Send)
			remote.POST("/send/bps", notificationHandler.SendBPS)
			remote.POST("/send/attendance-reminder", notificationHandler.SendAttendanceReminder)
			remote.POST("/send/rich", notificationHandler.SendRich)
			remote.POST("/send/staff", notificationHandler.SendStaff)
		}

		// Local notification scheduler
		schedule := api.Group("/schedule")
		{
			schedule.POST("/grade", scheduleHandler.ScheduleGrade)
			schedule.POST("/bps", scheduleHandler.ScheduleBPS)
			schedule.POST("/announcement", scheduleHandler.ScheduleAnnouncement)
			schedule.POST("/class-reminder", scheduleHandler.ScheduleClassReminder)
			schedule.GET("/pending", scheduleHandler.GetPending)
			schedule.GET("/outcomes", scheduleHandler.GetOutcomes)
			schedule.DELETE("/:id", scheduleHandler.Cancel)
		}
	}
}
