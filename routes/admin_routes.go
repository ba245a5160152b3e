package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/controllers"
)

func SetupAdminRoutes(r *gin.RouterGroup, adminController *controllers.AdminController) {
	admin := r.Group("/admin")
	{
		admin.GET("/uploads", adminController.ListUploads)
		admin.GET("/stats", adminController.GetStats)
		admin.GET("/export", adminController.ExportUploads)
		admin.GET("/ws", adminController.Feed)

		// Review decisions are final
		admin.POST("/uploads/:id/approve", adminController.ApproveUpload)
		admin.POST("/uploads/:id/reject", adminController.RejectUpload)
	}
}
