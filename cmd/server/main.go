package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/config"
	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/handlers"
	"github.com/campuscruz/rideshare-backend/internal/metrics"
	"github.com/campuscruz/rideshare-backend/internal/middleware"
	"github.com/campuscruz/rideshare-backend/internal/services"
	"github.com/campuscruz/rideshare-backend/pkg/jwt"
	"github.com/campuscruz/rideshare-backend/pkg/mailer"
	"github.com/campuscruz/rideshare-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting CampusCruz ride-sharing backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Run schema migrations
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database schema up to date")

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	credentialValidator := validator.NewCredentialValidator(cfg.Registration.AllowedEmailDomains)

	var mailService mailer.Mailer
	if cfg.SMTP.Host != "" {
		mailService = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		logger.Warn("No SMTP host configured, reset emails will be logged only")
		mailService = mailer.NewLogMailer(logger)
	}

	userRepository := database.NewUserRepository(db)
	rideRepository := database.NewRideRepository(db)
	passengerRepository := database.NewPassengerRepository(db)
	ratingRepository := database.NewRatingRepository(db)

	auditService := services.NewAuditService(db, logger)
	rideService := services.NewRideService(db, rideRepository, passengerRepository, ratingRepository, userRepository, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepository, jwtService, mailService, auditService, credentialValidator, cfg, logger)
	rideHandler := handlers.NewRideHandler(rideRepository, passengerRepository, rideService, logger)
	userHandler := handlers.NewUserHandler(userRepository, rideRepository, credentialValidator, logger)
	adminHandler := handlers.NewAdminHandler(userRepository, rideRepository, logger)
	healthHandler := handlers.NewHealthHandler(db, version)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	httpMetrics := metrics.New()

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(httpMetrics.Middleware())

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Service endpoints outside the API group
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", httpMetrics.Handler())

	requireAuth := middleware.AuthMiddleware(jwtService, userRepository, cfg.JWT.CookieName, logger)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
			auth.GET("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.PUT("/reset-password/:token", authHandler.ResetPassword)
		}

		rides := api.Group("/rides", requireAuth)
		{
			rides.POST("", rideHandler.Create)
			rides.GET("", rideHandler.List)
			rides.GET("/:id", rideHandler.Get)
			rides.POST("/:id/join", rideHandler.Join)
			rides.PUT("/:id/passengers/:passengerId", rideHandler.UpdatePassengerStatus)
			rides.PUT("/:id/complete", rideHandler.Complete)
			rides.POST("/:id/rate", rideHandler.Rate)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("/me/rides", userHandler.MyRides)
			users.GET("/me/stats", userHandler.Stats)
			users.GET("/me/notifications", userHandler.Notifications)
		}

		admin := api.Group("/admin", requireAuth, middleware.AdminOnly())
		{
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/rides", adminHandler.ListRides)
			admin.DELETE("/rides/:id", adminHandler.DeleteRide)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
