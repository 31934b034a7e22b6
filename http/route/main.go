package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqh/photokeep/http/controller"
	middlewares "github.com/tranqh/photokeep/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.CORSMiddleware(ctrl.Config.EnvConfig))

	r.GET("/healthz", ctrl.HealthCheck)

	folderRoutes := r.Group("/folders")
	{
		folderRoutes.GET("", ctrl.ListFolders)
		folderRoutes.POST("", ctrl.CreateFolder)
		folderRoutes.DELETE("/:id", ctrl.DeleteFolder)
	}

	photoRoutes := r.Group("/photos")
	{
		photoRoutes.GET("", ctrl.ListPhotos)
		photoRoutes.POST("", ctrl.UploadPhoto)
		photoRoutes.DELETE("/:id", ctrl.DeletePhoto)
	}

	return r
}
