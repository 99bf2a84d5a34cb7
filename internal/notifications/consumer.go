package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"staybook/pkg/logger"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	RetryBackoff         time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "staybook-notifications",
		Topics:               []string{"staybook.booking-events"},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		RetryBackoff:         100 * time.Millisecond,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// Consumer reads booking events from Kafka and hands them to a Sender.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	sender        Sender
	log           *logger.Logger
	wg            sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, sender Sender, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return newConsumer(consumerGroup, config, sender, log), nil
}

func newConsumer(group sarama.ConsumerGroup, config *ConsumerConfig, sender Sender, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Consumer{consumerGroup: group, config: config, sender: sender, log: log}
}

// Start runs numWorkers consume loops until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	c.log.Info("starting notification consumers", "workers", numWorkers, "topics", c.config.Topics)

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{consumer: c, workerID: workerID}

	for {
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			c.log.Warn("error consuming booking events", "worker", workerID, "error", err.Error())
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Warn("consumer group error", "error", err.Error())
	}
}

// Stop waits for the workers to exit and closes the group.
func (c *Consumer) Stop() error {
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

// Handle renders one booking event and sends it, retrying with backoff.
func (c *Consumer) Handle(ctx context.Context, payload []byte) error {
	event, err := ParseBookingEvent(payload)
	if err != nil {
		return err
	}
	msg := Render(event)

	backoff := c.config.RetryBackoffDuration
	for attempt := 0; ; attempt++ {
		err := c.sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt >= c.config.MaxRetries {
			return fmt.Errorf("failed to deliver %s for %s after %d attempts: %w", event.Type, event.BookingNumber, attempt+1, err)
		}

		select {
		case <-time.After(backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type groupHandler struct {
	consumer *Consumer
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.log.Debug("consumer group session started", "worker", h.workerID)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.consumer.log.Debug("consumer group session ended", "worker", h.workerID)
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.consumer.Handle(session.Context(), message.Value); err != nil {
				// Undeliverable events are logged and skipped so the partition keeps moving.
				h.consumer.log.ErrorWithContext(session.Context(), "Notification Failed", err, map[string]interface{}{
					"worker":    h.workerID,
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
