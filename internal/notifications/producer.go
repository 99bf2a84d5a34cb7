package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"staybook/pkg/logger"
)

// Publisher delivers booking events to the notification pipeline.
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "staybook.booking-events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// SaramaConfig builds the producer settings for cfg.
func (cfg *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes

	// Idempotent producer requires a single in-flight request
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps a booking's events ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes booking events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher creates a new Kafka booking event publisher
func NewKafkaPublisher(cfg *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	p.log.DebugWithContext(ctx, "Booking Event Published", map[string]interface{}{
		"topic":          p.topic,
		"partition":      partition,
		"offset":         offset,
		"event_type":     string(event.Type),
		"booking_number": event.BookingNumber,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// createHeaders creates Kafka headers for booking events
func createHeaders(event *BookingEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("priority"), Value: []byte(event.Priority)},
		{Key: []byte("booking_id"), Value: []byte(event.BookingID.String())},
		{Key: []byte("recipient_email"), Value: []byte(event.Recipient.Email)},
		{Key: []byte("producer"), Value: []byte("staybook-bookings")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// LogPublisher stands in for Kafka when it is disabled; events are only logged.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	p.log.InfoWithContext(ctx, "Booking Event", map[string]interface{}{
		"event_type":      string(event.Type),
		"booking_id":      event.BookingID.String(),
		"booking_number":  event.BookingNumber,
		"recipient_email": event.Recipient.Email,
	})
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
