package routes

import (
	"learnhub/controllers"

	"github.com/gin-gonic/gin"
)

func SignUpRouteHandler(ctx *gin.Context) {
	controllers.SignUp(ctx)
}

func VerifyEmailRouteHandler(ctx *gin.Context) {
	controllers.VerifyEmail(ctx)
}

func LoginRouteHandler(ctx *gin.Context) {
	controllers.Login(ctx)
}

func ForgotPasswordRouteHandler(ctx *gin.Context) {
	controllers.ForgotPassword(ctx)
}

func VerifyForgotPasswordRouteHandler(ctx *gin.Context) {
	controllers.VerifyForgotPassword(ctx)
}
