package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultConsumeBackoff = 500 * time.Millisecond

// HandlerFunc processes one decoded LinkCreated event. A returned error makes
// the consumer retry the same event after a backoff; later events on the
// partition wait until it succeeds.
type HandlerFunc func(ctx context.Context, ev LinkCreated) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	handle  HandlerFunc
	backoff time.Duration
	sleep   func(time.Duration)
}

type ConsumerOptions struct {
	Brokers []string
	Topic   string
	GroupID string
	Backoff time.Duration
}

func NewKafkaConsumer(opts ConsumerOptions, handle HandlerFunc) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     opts.Brokers,
		Topic:       opts.Topic,
		GroupID:     opts.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})
	return newConsumer(reader, handle, opts.Backoff)
}

func newConsumer(r messageReader, handle HandlerFunc, backoff time.Duration) *Consumer {
	if backoff <= 0 {
		backoff = defaultConsumeBackoff
	}
	return &Consumer{reader: r, handle: handle, backoff: backoff, sleep: time.Sleep}
}

// Run consumes until ctx is canceled. Malformed payloads are logged and
// committed so they are not redelivered. Handler failures are retried in
// place.
func (c *Consumer) Run(ctx context.Context) error {
	tracer := otel.Tracer("link-events")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to fetch kafka message", zap.Error(err))
			c.sleep(c.backoff)
			continue
		}

		consumeCtx, span := tracer.Start(
			contextFromKafkaHeaders(ctx, msg.Headers),
			"kafka.consume.link_created",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination.name", msg.Topic),
				attribute.String("messaging.operation", "process"),
				attribute.Int("messaging.kafka.partition", msg.Partition),
				attribute.Int64("messaging.kafka.offset", msg.Offset),
			),
		)

		if !c.processWithRetry(consumeCtx, msg, span) {
			span.End()
			return nil
		}

		if err := c.reader.CommitMessages(consumeCtx, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "commit kafka offset failed")
			logger.Error("failed to commit kafka offset", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
		span.End()
	}
}

// processWithRetry returns false only when ctx ends before msg is handled.
// The offset is committed strictly after success, so a failed event is never
// skipped by a later commit.
func (c *Consumer) processWithRetry(ctx context.Context, msg kafka.Message, span trace.Span) bool {
	for attempt := 1; ; attempt++ {
		err := c.process(ctx, msg)
		if err == nil {
			return true
		}
		span.RecordError(err)
		logger.Error("failed to process link event, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		c.sleep(c.backoff)
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "process link event failed")
			return false
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	var ev LinkCreated
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		logger.Warn("invalid link event payload, skipping", zap.Error(err), zap.ByteString("payload", msg.Value))
		return nil
	}
	if strings.TrimSpace(ev.Alias) == "" {
		logger.Warn("link event missing alias, skipping", zap.String("event_id", ev.EventID))
		return nil
	}
	return c.handle(ctx, ev)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func contextFromKafkaHeaders(parent context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		key := strings.ToLower(strings.TrimSpace(header.Key))
		if key == "" {
			continue
		}
		carrier.Set(key, string(header.Value))
	}
	return otel.GetTextMapPropagator().Extract(parent, carrier)
}
