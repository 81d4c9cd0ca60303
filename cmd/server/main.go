package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard-api/internal/config"
	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/database"
	"github.com/taskboard/taskboard-api/internal/handlers"
	"github.com/taskboard/taskboard-api/internal/middleware"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Mail delivery: Brevo when configured, log-only otherwise
	var mailer notify.Mailer
	if cfg.BrevoAPIKey != "" {
		mailer = notify.NewBrevoMailer(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName)
	} else {
		log.Println("BREVO_API_KEY not set, outgoing email will only be logged")
		mailer = notify.LogMailer{}
	}
	dispatcher := notify.NewDispatcher(mailer)
	defer dispatcher.Close()

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	// Credential verifier, chosen once at startup
	var verifier services.CredentialVerifier
	switch cfg.AuthMode {
	case "static":
		log.Println("AUTH_MODE=static: using fixture credentials")
		verifier = services.NewStaticVerifier(userRepo, cfg.FixtureAuthEmail, cfg.FixtureAuthPassword)
	default:
		verifier = services.NewBcryptVerifier(userRepo)
	}

	// Services
	invitationService := services.NewInvitationService(invitationRepo, dispatcher, cfg.AppBaseURL)
	authService := services.NewAuthService(userRepo, invitationService, verifier, dispatcher, cfg.AppBaseURL, cfg.AdminAlertEmail)
	taskService := services.NewTaskService(taskRepo, userRepo, dispatcher, cfg.AppBaseURL)
	commentService := services.NewCommentService(commentRepo, taskRepo)
	userService := services.NewUserService(userRepo, invitationRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	provisionHandler := handlers.NewProvisionHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	userHandler := handlers.NewUserHandler(userService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Management API is running",
		})
	})

	// Backend-privileged provisioning endpoints
	provision := r.Group("/", middleware.RequireProvisionKey(cfg.ProvisionKey))
	{
		provision.POST("/auth/signup-invited", provisionHandler.SignupInvited)
		provision.POST("/create-admin", provisionHandler.CreateAdmin)
	}

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequireAdmin(), taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id/status", middleware.RequireTaskAccess(), taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id", middleware.RequireAdmin(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireAdmin(), taskHandler.DeleteTask)
			tasks.GET("/:id/comments", middleware.RequireTaskAccess(), commentHandler.ListComments)
			tasks.POST("/:id/comments", middleware.RequireTaskAccess(), commentHandler.AddComment)
		}

		// User management (admin)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.PATCH("/:id/role", userHandler.UpdateUserRole)
		}

		// Invitations (admin)
		invitations := api.Group("/invitations")
		invitations.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			invitations.POST("", invitationHandler.CreateInvitation)
			invitations.GET("", invitationHandler.ListInvitations)
			invitations.DELETE("/:id", invitationHandler.RevokeInvitation)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
