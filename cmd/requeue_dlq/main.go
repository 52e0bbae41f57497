package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"doc-ingestion-be/internal/config"
	"doc-ingestion-be/pkg/queue"
)

// Operator tool: drains the dead-letter topic and republishes each message to
// the work topic for another full round of delivery attempts. Run it after
// fixing whatever made the messages fail (provider outage, bad deploy).
func main() {
	var (
		limit   = flag.Int("limit", 0, "max messages to requeue (0 = all currently waiting)")
		dryRun  = flag.Bool("dry-run", false, "list dead-lettered messages without requeueing")
		timeout = flag.Duration("timeout", 10*time.Second, "stop after this long without a new message")
	)
	flag.Parse()

	cfg := config.Load()

	q, err := queue.NewJetStreamQueue(cfg.App.NatsURL, queue.Options{
		Topic:             cfg.Queue.IngestionTopic,
		DeadLetterTopic:   cfg.Queue.DeadLetterTopic,
		VisibilityTimeout: time.Duration(cfg.Queue.VisibilityTimeoutSec) * time.Second,
		MaxReceiveCount:   cfg.Queue.MaxReceiveCount,
	})
	if err != nil {
		log.Fatalf("Failed to connect to JetStream: %v", err)
	}
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.ConsumeDeadLetters(ctx)
	if err != nil {
		log.Fatalf("Failed to read dead-letter topic: %v", err)
	}

	requeued := 0
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				log.Printf("Done: %d message(s) requeued", requeued)
				return
			}

			// Dead-lettered messages carry a "dlq-" prefixed dedupe id;
			// the original correlation id is what the worker resolves.
			originalId := strings.TrimPrefix(d.ID, "dlq-")

			if *dryRun {
				log.Printf("[DRY-RUN] would requeue %s (%d bytes)", originalId, len(d.Payload))
				_ = d.Nack()
				continue
			}

			err := q.Publish(ctx, &queue.Message{
				ID:         originalId,
				Payload:    d.Payload,
				EnqueuedAt: time.Now(),
			})
			if err != nil {
				log.Printf("Failed to requeue %s: %v", originalId, err)
				_ = d.Nack()
				continue
			}
			if err := d.Ack(); err != nil {
				log.Printf("Warn: requeued %s but failed to ack DLQ copy: %v", originalId, err)
			}

			requeued++
			log.Printf("Requeued %s", originalId)

			if *limit > 0 && requeued >= *limit {
				log.Printf("Done: %d message(s) requeued (limit reached)", requeued)
				return
			}

		case <-time.After(*timeout):
			log.Printf("Done: %d message(s) requeued (no more messages)", requeued)
			return
		}
	}
}
