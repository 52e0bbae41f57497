package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJetStreamMsg struct {
	data   []byte
	header nats.Header

	acks  int32
	naks  int32
	terms int32
}

func (m *fakeJetStreamMsg) Metadata() (*jetstream.MsgMetadata, error) {
	return nil, errors.New("no metadata")
}
func (m *fakeJetStreamMsg) Data() []byte { return m.data }

func (m *fakeJetStreamMsg) Headers() nats.Header { return m.header }

func (m *fakeJetStreamMsg) Subject() string { return "INGEST_DOCUMENT" }

func (m *fakeJetStreamMsg) Reply() string { return "" }
func (m *fakeJetStreamMsg) Ack() error {
	atomic.AddInt32(&m.acks, 1)
	return nil
}

func (m *fakeJetStreamMsg) DoubleAck(ctx context.Context) error { return m.Ack() }

func (m *fakeJetStreamMsg) Nak() error {
	atomic.AddInt32(&m.naks, 1)
	return nil
}

func (m *fakeJetStreamMsg) NakWithDelay(delay time.Duration) error { return m.Nak() }

func (m *fakeJetStreamMsg) InProgress() error { return nil }

func (m *fakeJetStreamMsg) Term() error {
	atomic.AddInt32(&m.terms, 1)
	return nil
}

func (m *fakeJetStreamMsg) TermWithReason(reason string) error { return m.Term() }

func newFakeJetStreamMsg(id string, payload []byte) *fakeJetStreamMsg {
	header := nats.Header{}
	header.Set(nats.MsgIdHdr, id)
	return &fakeJetStreamMsg{data: payload, header: header}
}

func TestJetStreamForwardDeliversToReceiver(t *testing.T) {
	q := &JetStreamQueue{opts: Options{MaxReceiveCount: 3}}
	msg := newFakeJetStreamMsg("msg-js-1", []byte("payload"))

	deliveries := make(chan *Delivery, 1)
	q.forward(context.Background(), deliveries, msg)

	d := <-deliveries
	assert.Equal(t, "msg-js-1", d.ID)
	assert.Equal(t, []byte("payload"), []byte(d.Payload))
	assert.Equal(t, 1, d.Attempt)
	assert.Zero(t, atomic.LoadInt32(&msg.naks))
}

func TestJetStreamForwardBacksOutOnShutdown(t *testing.T) {
	// Receiver is gone and the context is cancelled: forward must return
	// promptly and Nak the message instead of blocking on the send forever.
	q := &JetStreamQueue{opts: Options{MaxReceiveCount: 3}}
	msg := newFakeJetStreamMsg("msg-js-2", []byte("payload"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deliveries := make(chan *Delivery) // unbuffered, nobody receiving
	done := make(chan struct{})
	go func() {
		q.forward(ctx, deliveries, msg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forward stayed blocked after shutdown")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&msg.naks))
}
