package routes

import (
	"learnhub/controllers"
	"learnhub/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up the admin dashboard routes. Login is public;
// everything else runs behind auth plus Casbin RBAC.
func SetupAdminRoutes(router *gin.Engine) {
	router.POST("/admin/login", controllers.AdminLogin)

	admin := router.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RBACMiddleware())
	{
		admin.POST("/signup", controllers.AdminSignup)
		admin.GET("/stats", controllers.GetDashboardStats)

		admin.GET("/users", controllers.ListUsers)
		admin.PUT("/users/:id/role", controllers.UpdateUserRole)

		admin.GET("/courses/pending", controllers.ListPendingCourses)
		admin.POST("/courses/:id/publish", controllers.PublishCourse)

		admin.GET("/applications", controllers.ListInstructorApplications)
		admin.POST("/applications/:id/review", controllers.ReviewInstructorApplication)

		admin.POST("/orders/:id/refund", controllers.RefundOrder)

		admin.DELETE("/blogs/:id", controllers.DeleteBlog)
	}
}
