package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/config"
	"github.com/snap-point/fieldtrack/controllers"
	"github.com/snap-point/fieldtrack/middleware"
	"github.com/snap-point/fieldtrack/services"
)

// Dependencies are the long-lived services the HTTP layer is built from.
type Dependencies struct {
	Config  *config.Config
	Tracker *services.Tracker
	Hub     *services.EventHub
	Builder *services.MapBuilder
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize controllers
	configController := controllers.NewConfigController(deps.Config)
	sessionController := controllers.NewSessionController(deps.Tracker, deps.Config.PublicURL)
	locationController := controllers.NewLocationController(deps.Tracker)
	uploadController := controllers.NewUploadController(deps.Tracker, deps.Tracker.Rules)
	mapController := controllers.NewMapController(deps.Tracker, deps.Builder)
	adminController := controllers.NewAdminController(deps.Tracker, deps.Hub)

	api := r.Group("/api")
	{
		api.GET("/config", configController.GetClientConfig)
		api.POST("/sessions", sessionController.CreateSession)
	}

	session := api.Group("/sessions/:sessionId")
	session.Use(middleware.SessionMiddleware(deps.Tracker))
	{
		SetupSessionRoutes(session, sessionController, locationController, mapController)
		SetupSessionUploadRoutes(session, uploadController)
	}

	SetupUploadRoutes(api, uploadController)
	SetupAdminRoutes(api, adminController)
}
