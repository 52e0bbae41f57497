package bootstrap

import (
	"context"
	"log"
	"time"

	"doc-ingestion-be/internal/config"
	"doc-ingestion-be/internal/controller"
	"doc-ingestion-be/internal/pkg/logger"
	"doc-ingestion-be/internal/repository/unitofwork"
	"doc-ingestion-be/internal/service"
	"doc-ingestion-be/pkg/embedding"
	"doc-ingestion-be/pkg/lock"
	"doc-ingestion-be/pkg/pipeline"
	"doc-ingestion-be/pkg/queue"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	IngestionController controller.IIngestionController
	JobController       controller.IJobController
	DocumentController  controller.IDocumentController
	SearchController    controller.ISearchController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Queue queue.Queue
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Queue
	queueOpts := queue.Options{
		Topic:             cfg.Queue.IngestionTopic,
		DeadLetterTopic:   cfg.Queue.DeadLetterTopic,
		VisibilityTimeout: time.Duration(cfg.Queue.VisibilityTimeoutSec) * time.Second,
		MaxReceiveCount:   cfg.Queue.MaxReceiveCount,
	}

	var ingestionQueue queue.Queue
	if cfg.Queue.Provider == "gochannel" {
		ingestionQueue = queue.NewGoChannelQueue(queueOpts)
		log.Printf("[INFO] Using Queue Provider: GOCHANNEL (in-process)")
	} else {
		jsQueue, err := queue.NewJetStreamQueue(cfg.App.NatsURL, queueOpts)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to JetStream: %v", err)
		}
		ingestionQueue = jsQueue
		log.Printf("[INFO] Using Queue Provider: JETSTREAM (%s)", cfg.App.NatsURL)
	}

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey, cfg.Pipeline.EmbedBatchSize)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider, 30*time.Minute)

	// 4. Redis (advisory job lock; processing proceeds without it)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	jobLock := lock.NewJobLock(rdb, queueOpts.VisibilityTimeout)

	// 5. Pipeline
	parser := pipeline.NewFileParser(cfg.App.UploadDir)
	chunker := pipeline.NewChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	embedder := pipeline.NewEmbedder(embeddingProvider)
	indexer := pipeline.NewIndexer(service.NewVectorIndex(uowFactory), "pgvector:chunk_vectors")
	orchestrator := pipeline.NewOrchestrator(
		parser,
		chunker,
		embedder,
		indexer,
		time.Duration(cfg.Pipeline.StageTimeoutSec)*time.Second,
	)

	// 6. Services
	ingestionService := service.NewIngestionService(uowFactory, ingestionQueue, sysLogger)
	statusService := service.NewStatusService(uowFactory)
	retrievalService := service.NewRetrievalService(uowFactory, embeddingProvider, sysLogger)
	consumerService := service.NewConsumerService(
		ingestionQueue,
		uowFactory,
		orchestrator,
		jobLock,
		sysLogger,
		cfg.Queue.WorkerCount,
	)

	// 7. Controllers
	return &Container{
		IngestionController: controller.NewIngestionController(ingestionService),
		JobController:       controller.NewJobController(statusService),
		DocumentController:  controller.NewDocumentController(statusService, retrievalService),
		SearchController:    controller.NewSearchController(retrievalService),

		ConsumerService: consumerService,
		Queue:           ingestionQueue,
	}
}
