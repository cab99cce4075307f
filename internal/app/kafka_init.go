package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer, если заданы брокеры.
// Недоступная Kafka не мешает старту: сервис работает без публикации событий.
func initKafkaProducer(cfg KafkaConfig, logger *log.Entry) *kafka.Producer {
	if len(cfg.Brokers) == 0 {
		return nil
	}

	producer, err := kafka.NewProducer(cfg.Brokers, cfg.Topic)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithFields(log.Fields{
		"brokers": cfg.Brokers,
		"topic":   producer.Topic(),
	}).Info("kafka producer initialized")
	return producer
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
