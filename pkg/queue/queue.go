package queue

import (
	"context"
	"time"
)

// Message is the unit of transport. ID doubles as the consumer-side
// correlation id, so it must be stable across redeliveries.
type Message struct {
	ID         string
	Payload    []byte
	EnqueuedAt time.Time
}

// Delivery is one at-least-once delivery of a Message. Attempt is 1-based and
// counts redeliveries of the same message.
//
// Ack removes the message from the queue. Nack makes it eligible for
// redelivery until the receive budget is spent, after which the backend routes
// it to the dead-letter topic instead.
type Delivery struct {
	Message
	Attempt int

	ack  func() error
	nack func() error
}

func (d *Delivery) Ack() error {
	return d.ack()
}

func (d *Delivery) Nack() error {
	return d.nack()
}

// Queue is a durable, at-least-once message transport. Implementations must
// tolerate the same message being processed twice; consumers carry the
// idempotency burden.
type Queue interface {
	Publish(ctx context.Context, msg *Message) error
	Consume(ctx context.Context) (<-chan *Delivery, error)
	Close() error
}

// Options tune delivery behaviour shared by all backends.
type Options struct {
	Topic           string
	DeadLetterTopic string
	// VisibilityTimeout is how long a received-but-unacked message stays
	// hidden before the backend redelivers it. Must exceed the worst-case
	// pipeline duration with margin.
	VisibilityTimeout time.Duration
	// MaxReceiveCount is the delivery budget; the final failed delivery is
	// published to the dead-letter topic.
	MaxReceiveCount int
}
