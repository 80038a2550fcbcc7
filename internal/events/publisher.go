package events

import (
	"context"
	"encoding/json"
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

const defaultWriteTimeout = 2 * time.Second

// Publisher delivers LinkCreated events. Publishing is best effort.
type Publisher interface {
	PublishLinkCreated(ctx context.Context, ev LinkCreated) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
}

type KafkaOptions struct {
	Brokers      []string
	Topic        string
	ClientID     string
	WriteTimeout time.Duration
}

func NewKafkaPublisher(opts KafkaOptions) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Topic:                  opts.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: opts.ClientID},
	}
	return newKafkaPublisher(writer, opts.Topic, opts.WriteTimeout)
}

func newKafkaPublisher(w messageWriter, topic string, writeTimeout time.Duration) *KafkaPublisher {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &KafkaPublisher{writer: w, topic: topic, writeTimeout: writeTimeout}
}

// PublishLinkCreated writes ev keyed by alias, carrying the caller's trace
// context in the message headers.
func (p *KafkaPublisher) PublishLinkCreated(ctx context.Context, ev LinkCreated) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	producerCtx, span := otel.Tracer("link-events").Start(
		ctx,
		"kafka.publish.link_created",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.message.id", ev.EventID),
			attribute.String("messaging.kafka.message_key", ev.Alias),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(producerCtx, carrier)

	writeCtx, cancel := context.WithTimeout(producerCtx, p.writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:     []byte(ev.Alias),
		Value:   value,
		Time:    time.Now().UTC(),
		Headers: carrierToKafkaHeaders(carrier),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kafka publish failed")
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishLinkCreated(context.Context, LinkCreated) error { return nil }
func (Nop) Close() error                                        { return nil }

// PublishAsync publishes ev in the background and only logs failures.
func PublishAsync(ctx context.Context, p Publisher, ev LinkCreated) {
	if p == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := p.PublishLinkCreated(ctx, ev); err != nil {
			logger.Warn("failed to publish link created event",
				zap.Error(err),
				zap.String("event_id", ev.EventID),
				zap.String("alias", ev.Alias),
			)
		}
	}()
}

func carrierToKafkaHeaders(carrier propagation.MapCarrier) []kafka.Header {
	headers := make([]kafka.Header, 0, len(carrier))
	for key, value := range carrier {
		if strings.TrimSpace(value) == "" {
			continue
		}
		headers = append(headers, kafka.Header{
			Key:   key,
			Value: []byte(value),
		})
	}
	return headers
}
