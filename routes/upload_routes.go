package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/controllers"
)

func SetupSessionUploadRoutes(r *gin.RouterGroup, uploadController *controllers.UploadController) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", uploadController.CreateUpload)
		uploads.GET("", uploadController.ListSessionUploads)
	}
}

func SetupUploadRoutes(r *gin.RouterGroup, uploadController *controllers.UploadController) {
	uploads := r.Group("/uploads")
	{
		uploads.GET("/:id", uploadController.GetUpload)
		uploads.GET("/:id/files/:fileId", uploadController.DownloadFile)
	}
}
