package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"draftroom/pkg/config"
	"draftroom/pkg/jwt"
	"draftroom/pkg/logger"
	"draftroom/pkg/middleware"
	"draftroom/pkg/queue"
	notificationHTTP "draftroom/services/notification/internal/controller/http"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/repo/persistent"
	"draftroom/services/notification/internal/store"
	"draftroom/services/notification/internal/transport"
	"draftroom/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Initialize Repositories
	resolver := persistent.NewCollaboratorRepository(db)
	preferenceRepo := persistent.NewPreferenceRepository(db)

	// Initialize Stores
	notifications := store.NewNotificationStore(cfg.NotificationRetention)
	feed := store.NewActivityFeed(cfg.ActivityFeedCap)

	// Initialize UseCases
	publisher := transport.NewRedisPublisher(redisClient, log)
	preferenceUseCase := usecase.NewPreferenceUseCase(preferenceRepo, log)
	notificationUseCase := usecase.NewNotificationUseCase(notifications, publisher, log)
	activityUseCase := usecase.NewActivityUseCase(feed, resolver, log)
	router := usecase.NewDeliveryRouter(resolver, preferenceUseCase, notifications, feed, publisher, log)

	scheduler := usecase.NewScheduler(notifications, preferenceUseCase, queueClient, log,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second)

	// Initialize HTTP handlers
	notificationHandler := notificationHTTP.NewNotificationHandler(
		notificationUseCase, preferenceUseCase, activityUseCase, router,
		redisClient, log, jwtService)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))
	// Protected routes - require authentication
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.POST("/notifications/read", notificationHandler.MarkNotificationsRead)
		protected.GET("/notifications/preferences", notificationHandler.GetPreferences)
		protected.PUT("/notifications/preferences", notificationHandler.UpdatePreferences)
		protected.GET("/projects/:project_id/activity", notificationHandler.GetProjectActivity)
		protected.GET("/activity", notificationHandler.GetUserActivity)
	}
	// WebSocket endpoint - handles authentication internally via query parameter
	api.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	// Internal event intake - no auth required (for internal service calls)
	api.POST("/events", notificationHandler.IngestEvent)
	api.GET("/events/queue", func(c *gin.Context) {
		length, err := queueClient.GetQueueLength()
		if err != nil {
			log.Error("Failed to inspect event queue: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to inspect event queue"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue_length": length})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Background scheduler: expiry sweep + digest flush
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	scheduler.Start(schedulerCtx)

	// Consume collaboration events from the intake queue
	go func() {
		log.Info("Starting collaboration event consumer...")

		err := queueClient.ConsumeEvents(func(body []byte) error {
			var event entity.Event
			if err := json.Unmarshal(body, &event); err != nil {
				log.Error("Discarding malformed event payload: %v", err)
				return err
			}
			if err := event.Validate(); err != nil {
				log.Error("Discarding invalid %s event: %v", event.Type, err)
				return err
			}

			_, err := router.Route(context.Background(), event)
			return err
		})
		if err != nil {
			log.Error("Error starting event consumer: %v", err)
		}
	}()

	// Start server in a goroutine
	go func() {
		log.Info("Notification service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notification service...")

	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop the scheduler and let in-flight digest flushes finish
	cancelScheduler()
	scheduler.Stop()

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Notification service exited")
}
