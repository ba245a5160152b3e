package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/controllers"
)

func SetupSessionRoutes(r *gin.RouterGroup, sessionController *controllers.SessionController, locationController *controllers.LocationController, mapController *controllers.MapController) {
	r.GET("", sessionController.GetSession)
	r.GET("/qr", sessionController.GetSessionQR)

	// Location samples and the derived upload eligibility
	r.POST("/location", locationController.ReportLocation)
	r.GET("/eligibility", locationController.GetEligibility)

	r.GET("/map", mapController.GetSessionMap)
}
