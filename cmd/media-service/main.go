package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/config"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/services"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/ai"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/cache"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/database"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/notify"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/storage"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/interfaces/http/handlers"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/interfaces/http/middleware"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/websocket"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	store, err := storage.NewStore(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	analysisRepo := database.NewAnalysisRepository(db)
	mediaRepo := database.NewMediaRepository(db)
	userRepo := database.NewUserRepository(db)
	chatRepo := database.NewChatRepository(db)

	jobQueue := queue.NewRedisQueue(redisClient.Client)
	analysisService := services.NewAnalysisService(analysisRepo, mediaRepo, jobQueue)
	chatService := services.NewChatService(chatRepo, analysisRepo, mediaRepo,
		ai.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.CompletionModel))
	jwtService := services.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second)
	twilioClient := notify.NewTwilioClient(&cfg.Twilio)

	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	uploadHandler := handlers.NewUploadHandler(store, mediaRepo, analysisService)
	notificationHandler := handlers.NewNotificationHandler(userRepo, twilioClient)
	chatHandler := handlers.NewChatHandler(chatService)
	streamHandler := websocket.NewHandler(analysisRepo, jobQueue)

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.JWTAuthMiddleware(jwtService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/uploads/presign", uploadHandler.GeneratePresignedURL)
		v1.GET("/media", uploadHandler.GetUserMedia)
		v1.POST("/media/:media_id/complete", uploadHandler.CompleteUpload)

		v1.POST("/media/:media_id/analyze", analysisHandler.StartAnalysis)
		v1.GET("/media/:media_id/analysis/status", analysisHandler.GetAnalysisStatus)
		v1.GET("/media/:media_id/analysis", analysisHandler.GetAnalysisResult)
		v1.GET("/media/:media_id/analysis/stream", streamHandler.Stream)

		v1.POST("/media/:media_id/chat", chatHandler.SendMessage)
		v1.GET("/media/:media_id/chat", chatHandler.GetHistory)

		v1.POST("/notifications/whatsapp/connect", notificationHandler.ConnectWhatsApp)
		v1.POST("/notifications/whatsapp/disconnect", notificationHandler.DisconnectWhatsApp)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Media service listening on :%s ...", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Media service stopped cleanly.")
}
