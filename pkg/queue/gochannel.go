package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const metaEnqueuedAt = "enqueued_at"

// GoChannelQueue is the in-process backend, used in development and tests.
// Watermill's gochannel redelivers on Nack immediately, so the visibility
// timeout only applies to the durable backend; the receive budget and
// dead-lettering behave identically to JetStream.
type GoChannelQueue struct {
	pubSub *gochannel.GoChannel
	opts   Options

	mu       sync.Mutex
	attempts map[string]int
}

func NewGoChannelQueue(opts Options) *GoChannelQueue {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	return &GoChannelQueue{
		pubSub:   pubSub,
		opts:     opts,
		attempts: make(map[string]int),
	}
}

func (q *GoChannelQueue) Publish(ctx context.Context, msg *Message) error {
	wmMsg := message.NewMessage(msg.ID, msg.Payload)
	wmMsg.Metadata.Set(metaEnqueuedAt, msg.EnqueuedAt.Format(time.RFC3339Nano))
	if err := q.pubSub.Publish(q.opts.Topic, wmMsg); err != nil {
		return fmt.Errorf("failed to publish message %s: %w", msg.ID, err)
	}
	return nil
}

func (q *GoChannelQueue) Consume(ctx context.Context) (<-chan *Delivery, error) {
	messages, err := q.pubSub.Subscribe(ctx, q.opts.Topic)
	if err != nil {
		return nil, err
	}

	deliveries := make(chan *Delivery)
	go func() {
		defer close(deliveries)
		for msg := range messages {
			deliveries <- q.wrap(msg)
		}
	}()

	return deliveries, nil
}

func (q *GoChannelQueue) wrap(msg *message.Message) *Delivery {
	q.mu.Lock()
	q.attempts[msg.UUID]++
	attempt := q.attempts[msg.UUID]
	q.mu.Unlock()

	enqueuedAt, _ := time.Parse(time.RFC3339Nano, msg.Metadata.Get(metaEnqueuedAt))

	return &Delivery{
		Message: Message{
			ID:         msg.UUID,
			Payload:    msg.Payload,
			EnqueuedAt: enqueuedAt,
		},
		Attempt: attempt,
		ack: func() error {
			q.forget(msg.UUID)
			msg.Ack()
			return nil
		},
		nack: func() error {
			if attempt >= q.opts.MaxReceiveCount {
				// Budget spent: dead-letter instead of redelivering.
				if err := q.deadLetter(msg); err != nil {
					// The delivery must still resolve or the subscriber
					// stalls; keep it live for another try.
					msg.Nack()
					return err
				}
				q.forget(msg.UUID)
				msg.Ack()
				return nil
			}
			msg.Nack()
			return nil
		},
	}
}

func (q *GoChannelQueue) deadLetter(msg *message.Message) error {
	dead := msg.Copy()
	return q.pubSub.Publish(q.opts.DeadLetterTopic, dead)
}

// ConsumeDeadLetters exposes the DLQ stream for operator inspection/replay.
func (q *GoChannelQueue) ConsumeDeadLetters(ctx context.Context) (<-chan *Delivery, error) {
	messages, err := q.pubSub.Subscribe(ctx, q.opts.DeadLetterTopic)
	if err != nil {
		return nil, err
	}

	deliveries := make(chan *Delivery)
	go func() {
		defer close(deliveries)
		for msg := range messages {
			m := msg
			enqueuedAt, _ := time.Parse(time.RFC3339Nano, m.Metadata.Get(metaEnqueuedAt))
			deliveries <- &Delivery{
				Message: Message{ID: m.UUID, Payload: m.Payload, EnqueuedAt: enqueuedAt},
				Attempt: 1,
				ack:     func() error { m.Ack(); return nil },
				nack:    func() error { m.Nack(); return nil },
			}
		}
	}()
	return deliveries, nil
}

func (q *GoChannelQueue) forget(id string) {
	q.mu.Lock()
	delete(q.attempts, id)
	q.mu.Unlock()
}

func (q *GoChannelQueue) Close() error {
	return q.pubSub.Close()
}
