package v1

import (
	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/v1/events"
	"deskmatter/internal/api/v1/flash"
	"deskmatter/internal/api/v1/kv"
	"deskmatter/internal/api/v1/matters"
	"deskmatter/internal/api/v1/notifications"
	"deskmatter/internal/api/v1/repeattasks"
	"deskmatter/internal/api/v1/tags"
	"deskmatter/internal/api/v1/todos"
	"deskmatter/internal/calendar"
	"deskmatter/internal/state"
)

// SetupRoutes configures the data routes. flasher and source may be nil,
// in which case the tray and calendar routes are not mounted.
func SetupRoutes(routerGroup *gin.RouterGroup, st *state.State, flasher flash.Controller, source calendar.EventSource) {
	// Initialize handlers
	mattersHandler := matters.NewHandler(st)
	kvHandler := kv.NewHandler(st)
	tagsHandler := tags.NewHandler(st)
	repeatTasksHandler := repeattasks.NewHandler(st)
	todosHandler := todos.NewHandler(st)
	notificationsHandler := notifications.NewHandler(st)

	matterGroup := routerGroup.Group("/matter")
	{
		matterGroup.POST("", mattersHandler.Create)
		matterGroup.GET("", mattersHandler.List)
		matterGroup.GET("/range", mattersHandler.Range)
		matterGroup.GET("/query", mattersHandler.Query)
		matterGroup.GET("/:id", mattersHandler.Get)
		matterGroup.PUT("/:id", mattersHandler.Update)
		matterGroup.DELETE("/:id", mattersHandler.Delete)
	}

	kvGroup := routerGroup.Group("/kv")
	{
		kvGroup.GET("/:key", kvHandler.Get)
		kvGroup.PUT("/:key", kvHandler.Set)
		kvGroup.DELETE("/:key", kvHandler.Delete)
	}

	tagsGroup := routerGroup.Group("/tags")
	{
		tagsGroup.POST("", tagsHandler.Create)
		tagsGroup.GET("", tagsHandler.List)
		tagsGroup.DELETE("/:names", tagsHandler.Delete)
		tagsGroup.PUT("/update/:names", tagsHandler.Touch)
	}

	repeatGroup := routerGroup.Group("/repeat-task")
	{
		repeatGroup.POST("", repeatTasksHandler.Create)
		repeatGroup.GET("", repeatTasksHandler.List)
		repeatGroup.GET("/active", repeatTasksHandler.Active)
		repeatGroup.GET("/:id", repeatTasksHandler.Get)
		repeatGroup.PUT("/:id", repeatTasksHandler.Update)
		repeatGroup.DELETE("/:id", repeatTasksHandler.Delete)
		repeatGroup.PUT("/:id/status/:status", repeatTasksHandler.UpdateStatus)
	}

	todoGroup := routerGroup.Group("/todo")
	{
		todoGroup.POST("", todosHandler.Create)
		todoGroup.GET("", todosHandler.List)
		todoGroup.GET("/:id", todosHandler.Get)
		todoGroup.PUT("/:id", todosHandler.Update)
		todoGroup.DELETE("/:id", todosHandler.Delete)
	}

	notificationGroup := routerGroup.Group("/notification")
	{
		notificationGroup.POST("", notificationsHandler.Create)
		notificationGroup.GET("", notificationsHandler.List)
		notificationGroup.GET("/unread", notificationsHandler.Unread)
		notificationGroup.PUT("/read-all", notificationsHandler.MarkAllRead)
		notificationGroup.PUT("/read/:type", notificationsHandler.MarkReadByType)
		notificationGroup.GET("/:id", notificationsHandler.Get)
		notificationGroup.PUT("/:id", notificationsHandler.Update)
		notificationGroup.DELETE("/:id", notificationsHandler.Delete)
		notificationGroup.PUT("/:id/read", notificationsHandler.MarkRead)
	}

	if flasher != nil {
		flashHandler := flash.NewHandler(flasher)
		routerGroup.GET("/tray/flash", flashHandler.Get)
		routerGroup.PUT("/tray/flash/:state", flashHandler.Set)
	}

	if source != nil {
		eventsHandler := events.NewHandler(source)
		routerGroup.GET("/calendar/events", eventsHandler.List)
		routerGroup.GET("/calendar/permission", eventsHandler.Permission)
		routerGroup.POST("/calendar/permission", eventsHandler.RequestAccess)
	}
}
