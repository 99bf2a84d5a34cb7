package notifications

import (
	"context"
	"fmt"
	"sync"

	"staybook/internal/shared/config"
	"staybook/pkg/logger"
)

// Service owns the publisher handed to the booking engine and, when Kafka is
// enabled, the consumer group delivering notifications.
type Service struct {
	publisher Publisher
	consumer  *Consumer
	workers   int
	log       *logger.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewService wires Kafka when cfg.Enabled, otherwise a log-only publisher.
func NewService(cfg config.KafkaConfig, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	if !cfg.Enabled {
		log.Info("kafka disabled, booking events will only be logged")
		return &Service{publisher: NewLogPublisher(log), log: log}, nil
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Brokers
	producerConfig.Topic = cfg.Topic
	publisher, err := NewKafkaPublisher(producerConfig, log)
	if err != nil {
		return nil, err
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Brokers
	consumerConfig.Topics = []string{cfg.Topic}
	consumerConfig.GroupID = cfg.ConsumerGroup
	consumerConfig.MaxRetries = cfg.MaxRetries
	consumer, err := NewConsumer(consumerConfig, NewLogSender(log), log)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return &Service{publisher: publisher, consumer: consumer, workers: cfg.Workers, log: log}, nil
}

func (s *Service) Publisher() Publisher {
	return s.publisher
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("notification service is already running")
	}
	if s.consumer != nil {
		ctx, s.cancel = context.WithCancel(ctx)
		s.consumer.Start(ctx, s.workers)
	}
	s.isRunning = true
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			s.log.Error("error stopping consumer", "error", err.Error())
		}
	}
	if err := s.publisher.Close(); err != nil {
		s.log.Error("error closing publisher", "error", err.Error())
	}
	s.isRunning = false
	return nil
}
