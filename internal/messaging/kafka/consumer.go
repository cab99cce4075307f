package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// EventHandler обрабатывает событие каталога. Ошибка оставляет сообщение неподтверждённым.
type EventHandler func(ctx context.Context, event WhiskyEvent) error

// Consumer читает события каталога через consumer group.
type Consumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
	handler  EventHandler
	logger   *log.Entry
	wg       sync.WaitGroup
}

// NewConsumer подключается к брокерам; fromOldest читает topic с начала для новой группы.
func NewConsumer(brokers []string, groupID string, topics []string, fromOldest bool, handler EventHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	if fromOldest {
		config.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer: group,
		topics:   topics,
		handler:  handler,
		logger:   log.WithField("component", "kafka-consumer"),
	}, nil
}

// Start запускает чтение в фоне до отмены ctx.
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// Consume возвращается при каждом rebalance.
			if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

// Stop закрывает группу и ждёт фоновые горутины.
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim обрабатывает сообщения partition. Нечитаемые сообщения
// подтверждаются и пропускаются, иначе они блокировали бы partition навсегда.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			fields := log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}

			event, err := ParseWhiskyEvent(message)
			if err != nil {
				c.logger.WithError(err).WithFields(fields).Warn("skipping malformed message")
				session.MarkMessage(message, "")
				continue
			}

			if err := c.handler(session.Context(), event); err != nil {
				c.logger.WithError(err).WithFields(fields).Error("event handler failed")
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
