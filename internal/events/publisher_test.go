package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
	done   chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	if w.done != nil {
		close(w.done)
	}
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewLinkCreated(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	ev := NewLinkCreated("abc", "https://example.com", "http://s.io/r/abc", at)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "2026-01-02T02:04:05Z", ev.OccurredAt)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	w := &fakeWriter{}
	p := newKafkaPublisher(w, "links.created", 0)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	ev := NewLinkCreated("abc", "https://example.com", "http://s.io/r/abc", time.Now())
	require.NoError(t, p.PublishLinkCreated(ctx, ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "abc", string(msg.Key))

	var got LinkCreated
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, ev, got)

	var traceparent string
	for _, h := range msg.Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	assert.Contains(t, traceparent, spanCtx.TraceID().String())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, "links.created", time.Second)

	err := p.PublishLinkCreated(context.Background(), LinkCreated{Alias: "abc"})
	assert.EqualError(t, err, "broker down")
}

func TestPublishAsync(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down"), done: make(chan struct{})}
	p := newKafkaPublisher(w, "links.created", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	PublishAsync(ctx, p, LinkCreated{Alias: "abc"})
	cancel()

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}

	PublishAsync(context.Background(), nil, LinkCreated{})
}

func TestCarrierToKafkaHeaders_SkipsBlank(t *testing.T) {
	headers := carrierToKafkaHeaders(propagation.MapCarrier{"traceparent": "00-x", "baggage": " "})
	require.Len(t, headers, 1)
	assert.Equal(t, "traceparent", headers[0].Key)
}
