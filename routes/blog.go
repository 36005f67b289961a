package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

// SetupBlogRoutes registers blog endpoints. The feed and single posts are
// public; writing, liking and commenting require auth.
func SetupBlogRoutes(router *gin.Engine, authorized *gin.RouterGroup) {
	router.GET("/blogs", controllers.GetBlogFeed)
	router.GET("/blogs/:id", controllers.GetBlog)
	router.GET("/blogs/:id/comments", controllers.GetBlogComments)

	blogs := authorized.Group("/blogs")
	{
		blogs.POST("", controllers.CreateBlog)
		blogs.DELETE("/:id", controllers.DeleteBlog)
		blogs.POST("/:id/like", controllers.LikeBlog)
		blogs.POST("/:id/comments", controllers.CommentOnBlog)
	}
}
