package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

// SetupStudentRoutes registers the authenticated learner surface: profile,
// cart, checkout, enrolled courses and gamification.
func SetupStudentRoutes(authorized *gin.RouterGroup) {
	authorized.GET("/me", controllers.GetMe)
	authorized.PUT("/me", controllers.UpdateProfile)

	cart := authorized.Group("/cart")
	{
		cart.GET("", controllers.GetCart)
		cart.POST("", controllers.AddToCart)
		cart.DELETE("/:courseId", controllers.RemoveFromCart)
	}

	checkout := authorized.Group("/checkout")
	{
		checkout.POST("", controllers.CreateCheckout)
		checkout.POST("/verify", controllers.VerifyPayment)
	}

	myCourses := authorized.Group("/my-courses")
	{
		myCourses.GET("", controllers.GetMyCourses)
		myCourses.GET("/:courseId", controllers.GetCourseContent)
		myCourses.POST("/:courseId/lessons/:lessonId/watch", controllers.MarkVideoWatched)
		myCourses.POST("/:courseId/lessons/:lessonId/complete", controllers.CompleteLesson)
	}

	gamification := authorized.Group("/gamification")
	{
		gamification.POST("/earn", controllers.EarnXP)
		gamification.GET("/profile", controllers.GetGamificationProfile)
		gamification.GET("/leaderboard", controllers.GetLeaderboard)
	}

	authorized.POST("/instructor-applications", controllers.ApplyInstructor)
}
