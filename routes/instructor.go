package routes

import (
	"learnhub/controllers"
	"learnhub/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupInstructorRoutes registers course authoring endpoints, guarded by
// RBAC on top of auth
func SetupInstructorRoutes(authorized *gin.RouterGroup) {
	instructor := authorized.Group("/instructor")
	instructor.Use(middlewares.RBACMiddleware())
	{
		instructor.GET("/courses", controllers.GetInstructorCourses)
		instructor.POST("/courses", controllers.CreateCourse)
		instructor.PUT("/courses/:id", controllers.UpdateCourse)
		instructor.GET("/stats", controllers.GetInstructorStats)
	}
}
