package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes registers the public course catalog endpoints
func SetupCatalogRoutes(router *gin.Engine) {
	catalog := router.Group("/courses")
	{
		catalog.GET("", controllers.ListCourses)
		catalog.GET("/suggestions", controllers.SearchSuggestions)
		catalog.GET("/:id", controllers.GetCourse)
	}
}
