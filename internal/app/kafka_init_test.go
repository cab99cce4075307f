package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaProducer_Disabled(t *testing.T) {
	if producer := initKafkaProducer(KafkaConfig{}, log.WithField("test", "kafka-disabled")); producer != nil {
		t.Fatal("expected nil producer without brokers")
	}
}

func TestInitKafkaProducer_UnreachableBrokers(t *testing.T) {
	producer := initKafkaProducer(KafkaConfig{Brokers: []string{"invalid-broker:9092"}}, log.WithField("test", "kafka-invalid"))
	if producer != nil {
		t.Fatal("expected nil producer for unreachable brokers")
	}
}

func TestCloseKafka_Nil(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka-close"))
}
