package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/cache"
	"github.com/pulsegram/backend/internal/handlers"
	"github.com/pulsegram/backend/internal/jobs"
	"github.com/pulsegram/backend/internal/middleware"
	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/notify"
	"github.com/pulsegram/backend/internal/repositories"
	"github.com/pulsegram/backend/internal/services"
	"github.com/pulsegram/backend/internal/trending"
	"github.com/pulsegram/backend/pkg/config"
	"github.com/pulsegram/backend/pkg/logger"
	"github.com/pulsegram/backend/pkg/mediastore"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logger.Log.Info("Global middleware configured.")
}

// SetupRoutes wires repositories, services, handlers and the background
// job scheduler, and registers all application routes.
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) *jobs.Scheduler {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Block{},
		&models.SavedPost{},
		&models.StorySeen{},
		&models.StoryReaction{},
		&models.Notification{},
	)
	if err != nil {
		logger.Log.Errorf("Failed to auto migrate models: %v", err)
	}
	logger.Log.Info("PostgreSQL auto-migrations completed for all models.")

	mongoDB := mgClient.Database(cfg.MongoDatabase)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	eventRepo := repositories.NewMongoEventRepository(mongoDB)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(pgdb)
	storyRepo := repositories.NewStoryRepository(mongoDB, pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Cross-cutting collaborators ---
	var cacheStore cache.Store
	if cfg.CacheBackend == "memory" {
		cacheStore = cache.NewMemoryStore()
		logger.Log.Info("Using in-memory feed cache.")
	} else {
		cacheStore = cache.NewMongoStore(mongoDB)
		logger.Log.Info("Using MongoDB-backed feed cache.")
	}
	feedCache := cache.New(cacheStore)

	dispatcher := notify.NewDurableDispatcher(notificationRepo)
	trendingCache := trending.NewCache()
	mediaStore := mediastore.FromURL(cfg.MediaStoreURL)

	// --- Services ---
	feedService := services.NewFeedService(postRepo, followRepo, likeRepo, savedPostRepo, userRepo, feedCache)
	engagementService := services.NewEngagementService(postRepo, likeRepo, savedPostRepo, commentRepo, eventRepo, dispatcher)
	analyticsService := services.NewAnalyticsService(postRepo, eventRepo)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
	logger.Log.Info("Firebase authentication middleware applied to /api/v1 group.")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	logger.Log.Info("User profile routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, followRepo, feedService, mediaStore)
	postHandler.RegisterPostRoutes(api)
	logger.Log.Info("Post routes configured.")

	feedHandler := handlers.NewFeedHandler(feedService, trendingCache)
	feedHandler.RegisterFeedRoutes(api)
	logger.Log.Info("Feed routes configured.")

	engagementHandler := handlers.NewEngagementHandler(engagementService)
	engagementHandler.RegisterEngagementRoutes(api)
	logger.Log.Info("Engagement routes configured.")

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	analyticsHandler.RegisterAnalyticsRoutes(api)
	logger.Log.Info("Analytics routes configured.")

	commentHandler := handlers.NewCommentHandler(engagementService, commentRepo)
	commentHandler.RegisterCommentRoutes(api)
	logger.Log.Info("Comment routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo, feedService, dispatcher)
	followHandler.RegisterFollowRoutes(api)
	logger.Log.Info("Follow routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	logger.Log.Info("Notification routes configured.")

	// --- Background jobs ---
	return jobs.NewScheduler(
		jobs.NewScoringJob(postRepo),
		jobs.NewTrendingJob(postRepo, trendingCache),
		jobs.NewPublisherJob(postRepo, followRepo, dispatcher),
		jobs.NewCleanupJob(storyRepo),
	)
}
