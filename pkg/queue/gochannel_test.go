package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue() *GoChannelQueue {
	return NewGoChannelQueue(Options{
		Topic:             "INGEST_DOCUMENT",
		DeadLetterTopic:   "INGEST_DOCUMENT_DLQ",
		VisibilityTimeout: time.Second,
		MaxReceiveCount:   3,
	})
}

func receiveOne(t *testing.T, deliveries <-chan *Delivery) *Delivery {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func TestGoChannelPublishConsume(t *testing.T) {
	q := newTestQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	enqueuedAt := time.Now().Truncate(time.Millisecond)
	require.NoError(t, q.Publish(ctx, &Message{
		ID:         "msg-1",
		Payload:    []byte(`{"hello":"world"}`),
		EnqueuedAt: enqueuedAt,
	}))

	d := receiveOne(t, deliveries)
	assert.Equal(t, "msg-1", d.ID)
	assert.Equal(t, []byte(`{"hello":"world"}`), []byte(d.Payload))
	assert.Equal(t, 1, d.Attempt)
	assert.True(t, d.EnqueuedAt.Equal(enqueuedAt))

	require.NoError(t, d.Ack())
}

func TestGoChannelNackRedeliversWithIncrementedAttempt(t *testing.T) {
	q := newTestQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &Message{ID: "msg-2", Payload: []byte("payload")}))

	first := receiveOne(t, deliveries)
	assert.Equal(t, 1, first.Attempt)
	require.NoError(t, first.Nack())

	second := receiveOne(t, deliveries)
	assert.Equal(t, "msg-2", second.ID)
	assert.Equal(t, 2, second.Attempt)
	require.NoError(t, second.Ack())
}

func TestGoChannelDeadLettersAfterBudget(t *testing.T) {
	q := newTestQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dlq, err := q.ConsumeDeadLetters(ctx)
	require.NoError(t, err)

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &Message{ID: "msg-3", Payload: []byte("poison")}))

	// Burn through the receive budget.
	for attempt := 1; attempt <= 3; attempt++ {
		d := receiveOne(t, deliveries)
		assert.Equal(t, attempt, d.Attempt)
		require.NoError(t, d.Nack())
	}

	// The final nack routed the message to the DLQ instead of redelivering.
	dead := receiveOne(t, dlq)
	assert.Equal(t, "msg-3", dead.ID)
	assert.Equal(t, []byte("poison"), []byte(dead.Payload))
	require.NoError(t, dead.Ack())

	// No fourth work delivery.
	select {
	case d := <-deliveries:
		t.Fatalf("unexpected redelivery after dead-lettering: attempt %d", d.Attempt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestGoChannelNackSurfacesDeadLetterFailure(t *testing.T) {
	q := NewGoChannelQueue(Options{
		Topic:           "INGEST_DOCUMENT",
		DeadLetterTopic: "INGEST_DOCUMENT_DLQ",
		MaxReceiveCount: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &Message{ID: "msg-5", Payload: []byte("a")}))
	d := receiveOne(t, deliveries)

	// Closing the pub/sub makes the dead-letter publish fail; the final nack
	// must report the error instead of swallowing the delivery.
	require.NoError(t, q.Close())
	assert.Error(t, d.Nack())
}

func TestGoChannelAckResetsAttemptTracking(t *testing.T) {
	q := newTestQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &Message{ID: "msg-4", Payload: []byte("a")}))
	d := receiveOne(t, deliveries)
	require.NoError(t, d.Nack())
	d = receiveOne(t, deliveries)
	assert.Equal(t, 2, d.Attempt)
	require.NoError(t, d.Ack())

	// Re-publishing the same id after a completed cycle starts a fresh budget.
	require.NoError(t, q.Publish(ctx, &Message{ID: "msg-4", Payload: []byte("a")}))
	d = receiveOne(t, deliveries)
	assert.Equal(t, 1, d.Attempt)
	require.NoError(t, d.Ack())
}
