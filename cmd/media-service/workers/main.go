package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/config"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/cache"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/database"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/notify"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/storage"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/workers/analyzer"
)

func main() {
	cfg := config.Load()

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

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
	jobQueue := queue.NewRedisQueue(redisClient.Client)

	// One bounded pool for every blocking call in the process.
	pool := analyzer.NewWorkerPool(cfg.Worker.BlockingPoolSize)

	processor := analyzer.New(analyzer.Deps{
		AnalysisRepo: analysisRepo,
		MediaRepo:    mediaRepo,
		Queue:        jobQueue,
		Fetcher:      analyzer.NewFetcher(store),
		Audio:        analyzer.NewAudioExtractor(pool),
		Transcriber:  analyzer.NewGroqTranscriber(cfg.AI.GroqKey, cfg.AI.GroqBaseURL, cfg.AI.WhisperModel, cfg.AI.Language, pool),
		Synthesizer:  analyzer.NewOpenAISynthesizer(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.CompletionModel),
		Enricher:     analyzer.NewFrameEnricher(store, analyzer.FFmpegFrameExtractor{}, pool),
		Notifier:     analyzer.NewWhatsAppNotifier(userRepo, notify.NewTwilioClient(&cfg.Twilio)),
		TempDir:      cfg.Worker.TempDir,
		Workers:      cfg.Worker.AnalysisWorkers,
	})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		processor.Run(ctx)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	time.Sleep(2 * time.Second)
	log.Println("Analysis worker stopped cleanly.")
}
