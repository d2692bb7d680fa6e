package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/pkg/logger"
)

// KafkaSink forwards change notifications to Kafka so dashboards and other
// processes can observe mutations without polling the store.
type KafkaSink struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewKafkaSink creates a synchronous Kafka producer sink.
func NewKafkaSink(brokers []string) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka event sink initialized")

	return &KafkaSink{producer: producer, brokers: brokers}, nil
}

// topicFor maps an event type onto its Kafka topic by entity family.
func topicFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "order."):
		return TopicOrders
	case strings.HasPrefix(eventType, "user."):
		return TopicUsers
	default:
		return TopicCatalog
	}
}

// Forward publishes one event with its trace context in the message headers.
func (s *KafkaSink) Forward(ctx context.Context, event Event) error {
	topic := topicFor(event.Type)

	tracer := otel.Tracer("kafka-sink")
	ctx, span := tracer.Start(ctx, "kafka.publish."+event.Type,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", event.Type),
			attribute.String("event.id", event.ID),
			attribute.String("entity.id", event.EntityID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("event_id"), Value: []byte(event.ID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(event.Collection + "_" + event.EntityID),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published")

	logger.Info(ctx).
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Change notification forwarded to Kafka")

	return nil
}

// Close closes the underlying producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
