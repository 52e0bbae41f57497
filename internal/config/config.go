package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Queue    QueueConfig
	Pipeline PipelineConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection   string
	MaxIdleConns int
	MaxOpenConns int
}

type QueueConfig struct {
	Provider             string // "gochannel" or "jetstream"
	IngestionTopic       string
	DeadLetterTopic      string
	VisibilityTimeoutSec int
	MaxReceiveCount      int
	WorkerCount          int
	BatchSize            int
}

type PipelineConfig struct {
	ChunkSize       int // target chunk size in characters
	ChunkOverlap    int
	EmbedBatchSize  int
	StageTimeoutSec int // per-stage budget, must stay under the visibility timeout
	VectorDimension int
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	GoogleGeminiKey   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		Queue: QueueConfig{
			Provider:        getEnv("QUEUE_PROVIDER", "jetstream"),
			IngestionTopic:  getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
			DeadLetterTopic: getEnv("INGEST_DOCUMENT_DLQ_NAME", "INGEST_DOCUMENT_DLQ"),
			// Worst-case pipeline run (parse + embed + index) stays well under
			// 2 minutes; 5 minutes keeps mid-processing redelivery rare.
			VisibilityTimeoutSec: getEnvAsInt("QUEUE_VISIBILITY_TIMEOUT_SEC", 300),
			MaxReceiveCount:      getEnvAsInt("QUEUE_MAX_RECEIVE_COUNT", 3),
			WorkerCount:          getEnvAsInt("WORKER_COUNT", 4),
			BatchSize:            getEnvAsInt("QUEUE_BATCH_SIZE", 1),
		},
		Pipeline: PipelineConfig{
			ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1500),
			ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedBatchSize:  getEnvAsInt("EMBED_BATCH_SIZE", 16),
			StageTimeoutSec: getEnvAsInt("STAGE_TIMEOUT_SEC", 60),
			VectorDimension: getEnvAsInt("VECTOR_DIMENSION", 768),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
