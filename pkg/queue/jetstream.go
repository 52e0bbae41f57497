package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const ingestionStream = "INGESTION"

// JetStreamQueue is the durable backend. JetStream gives us the queue
// semantics the pipeline needs out of the box: explicit acks, AckWait as the
// visibility timeout, and MaxDeliver as the receive budget. The final failed
// delivery is published to the dead-letter subject before being terminated.
type JetStreamQueue struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	opts Options

	consumeCtx jetstream.ConsumeContext
}

func NewJetStreamQueue(url string, opts Options) (*JetStreamQueue, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One stream holds both the work subject and the dead-letter subject;
	// the DLQ keeps its own durable consumer and long retention.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      ingestionStream,
		Subjects:  []string{opts.Topic, opts.DeadLetterTopic},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		log.Printf("Warn: Failed to ensure stream %q: %v", ingestionStream, err)
	}

	return &JetStreamQueue{nc: nc, js: js, opts: opts}, nil
}

func (q *JetStreamQueue) Publish(ctx context.Context, msg *Message) error {
	// The message id doubles as the JetStream dedupe id, so a gateway retry
	// of the same publish cannot enqueue twice within the dedupe window.
	_, err := q.js.Publish(ctx, q.opts.Topic, msg.Payload, jetstream.WithMsgID(msg.ID))
	if err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", q.opts.Topic, err)
	}
	return nil
}

func (q *JetStreamQueue) Consume(ctx context.Context) (<-chan *Delivery, error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, ingestionStream, jetstream.ConsumerConfig{
		Durable:       "ingestion-workers",
		FilterSubject: q.opts.Topic,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       q.opts.VisibilityTimeout,
		MaxDeliver:    q.opts.MaxReceiveCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	deliveries := make(chan *Delivery)

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		q.forward(ctx, deliveries, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}
	q.consumeCtx = consumeCtx

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
		// Wait until in-flight callbacks have returned; closing earlier
		// would panic a callback mid-send.
		<-consumeCtx.Closed()
		close(deliveries)
	}()

	return deliveries, nil
}

// forward hands one message to the worker channel, backing out on shutdown so
// Stop never strands a callback blocked on a send. An unforwarded message is
// Nak'd for redelivery to the next worker.
func (q *JetStreamQueue) forward(ctx context.Context, deliveries chan<- *Delivery, msg jetstream.Msg) {
	select {
	case deliveries <- q.wrap(msg):
	case <-ctx.Done():
		_ = msg.Nak()
	}
}

func (q *JetStreamQueue) wrap(msg jetstream.Msg) *Delivery {
	attempt := 1
	var enqueuedAt time.Time
	if meta, err := msg.Metadata(); err == nil {
		attempt = int(meta.NumDelivered)
		enqueuedAt = meta.Timestamp
	}

	id := msg.Headers().Get(nats.MsgIdHdr)

	return &Delivery{
		Message: Message{
			ID:         id,
			Payload:    msg.Data(),
			EnqueuedAt: enqueuedAt,
		},
		Attempt: attempt,
		ack:     msg.Ack,
		nack: func() error {
			if attempt >= q.opts.MaxReceiveCount {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if _, err := q.js.Publish(ctx, q.opts.DeadLetterTopic, msg.Data(), jetstream.WithMsgID("dlq-"+id)); err != nil {
					return fmt.Errorf("failed to dead-letter message %s: %w", id, err)
				}
				return msg.Term()
			}
			return msg.Nak()
		},
	}
}

// ConsumeDeadLetters reads the DLQ for the operator replay tool. Messages stay
// on the DLQ until explicitly acked by the replayer.
func (q *JetStreamQueue) ConsumeDeadLetters(ctx context.Context) (<-chan *Delivery, error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, ingestionStream, jetstream.ConsumerConfig{
		Durable:       "ingestion-dlq-reader",
		FilterSubject: q.opts.DeadLetterTopic,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DLQ consumer: %w", err)
	}

	deliveries := make(chan *Delivery)
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		id := msg.Headers().Get(nats.MsgIdHdr)
		d := &Delivery{
			Message: Message{ID: id, Payload: msg.Data()},
			Attempt: 1,
			ack:     msg.Ack,
			nack:    msg.Nak,
		}
		select {
		case deliveries <- d:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start DLQ consumer: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
		<-consumeCtx.Closed()
		close(deliveries)
	}()

	return deliveries, nil
}

func (q *JetStreamQueue) Close() error {
	if q.consumeCtx != nil {
		q.consumeCtx.Stop()
	}
	if q.nc != nil {
		q.nc.Close()
	}
	return nil
}
