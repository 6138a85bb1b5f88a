package routes

import (
	"wellness/controllers"
	"wellness/middlewares"
	"wellness/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Gateway  *services.NotificationGateway
	Worker   *services.Worker
	Platform *services.DevicePlatform
	Registry *services.ClientRegistry
}

func SetupRouter(deps Deps) *gin.Engine {
	middlewares.RegisterValidators()

	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	nc := controllers.NewNotificationController(deps.Gateway, deps.Worker, deps.Platform)
	rc := controllers.NewRealtimeController(deps.Registry)

	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)

		user.GET("/daily", controllers.GetDailyRecord)
		user.GET("/daily/:date", controllers.GetDailyRecord)
		user.POST("/daily", controllers.SaveDailyRecord)

		user.GET("/export", controllers.ExportData)
		user.POST("/import", controllers.ImportData)
		user.POST("/reset-limits", controllers.ResetLimits)
		user.DELETE("/data", controllers.ClearData)

		user.GET("/reminders", controllers.GetReminderSettings)
		user.PUT("/reminders", controllers.UpdateReminderSettings)
	}

	chat := r.Group("/chat")
	chat.Use(middlewares.AuthMiddleware())
	{
		chat.GET("/quota", controllers.CheckQuota)
		chat.POST("/message", controllers.SendChatMessage)
	}

	notifications := r.Group("/notifications")
	notifications.Use(middlewares.AuthMiddleware())
	{
		notifications.GET("/status", nc.Status)
		notifications.POST("/enable", nc.Enable)
		notifications.POST("/disable", nc.Disable)
		notifications.POST("/test", nc.SendTest)
		notifications.POST("/permission", nc.SetPermission)
		notifications.POST("/push", nc.Push)
		notifications.POST("/click", nc.Click)
		notifications.GET("/history", nc.History)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/client", rc.ClientWS)
	}

	return r
}
