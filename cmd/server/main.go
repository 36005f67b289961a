package main

import (
	"log"
	"strconv"

	"learnhub/config"
	"learnhub/controllers"
	"learnhub/db"
	"learnhub/middlewares"
	"learnhub/routes"
	"learnhub/services"
	"learnhub/utils"
	"learnhub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	controllers.SetConfig(cfg)
	utils.SetJWTSecret(cfg.JWT.Secret)
	utils.SetJWTExpiry(cfg.JWT.Expiry)
	utils.SetEmailConfig(cfg)

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	if err := db.EnsureIndexes(); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	if err := db.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("Redis unavailable, caching disabled: %v", err)
	}

	if err := middlewares.InitCasbin(cfg); err != nil {
		log.Fatalf("Failed to initialize RBAC: %v", err)
	}

	services.InitGamificationService()
	services.InitPaymentService(cfg)

	// Seed demo catalog data on an empty database
	utils.PopulateSampleCourses()

	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/signup", routes.SignUpRouteHandler)
	router.POST("/verifyEmail", routes.VerifyEmailRouteHandler)
	router.POST("/login", routes.LoginRouteHandler)
	router.POST("/forgotPassword", routes.ForgotPasswordRouteHandler)
	router.POST("/confirmForgotPassword", routes.VerifyForgotPasswordRouteHandler)

	// Gateway webhook authenticates by signature, not by user token
	router.POST("/webhooks/payment", controllers.PaymentWebhook)

	routes.SetupCatalogRoutes(router)
	routes.SetupAdminRoutes(router)

	// Live purchase/enrollment event stream; the handler authenticates
	// itself so browser WebSocket clients can pass the token as a query
	// parameter
	router.GET("/ws/live-events", websocket.LiveEventsHandler)

	// Protected routes (JWT auth)
	authorized := router.Group("/")
	authorized.Use(middlewares.AuthMiddleware())
	{
		routes.SetupStudentRoutes(authorized)
		routes.SetupInstructorRoutes(authorized)
	}

	routes.SetupBlogRoutes(router, authorized)

	return router
}
