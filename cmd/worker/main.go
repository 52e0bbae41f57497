package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"doc-ingestion-be/internal/bootstrap"
	"doc-ingestion-be/internal/config"
	"doc-ingestion-be/internal/tracer"
	"doc-ingestion-be/pkg/database"
)

// Dedicated worker tier: consumes the ingestion queue without serving HTTP.
// Scale this process horizontally; the durable queue group load-balances
// deliveries across instances.
func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("✅ Worker is consuming ingestion queue...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down worker...")
	cancel()
	if err := container.Queue.Close(); err != nil {
		log.Printf("Queue close error: %v", err)
	}
}
