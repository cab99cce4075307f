package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
)

type mockConsumerGroup struct {
	consumeFn func(context.Context, []string, sarama.ConsumerGroupHandler) error
	errorsCh  chan error
	closeFn   func() error
}

func (m *mockConsumerGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, topics, handler)
	}
	return nil
}

func (m *mockConsumerGroup) Errors() <-chan error {
	return m.errorsCh
}

func (m *mockConsumerGroup) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	if m.errorsCh != nil {
		close(m.errorsCh)
	}
	return nil
}

func (m *mockConsumerGroup) Pause(map[string][]int32)  {}
func (m *mockConsumerGroup) Resume(map[string][]int32) {}
func (m *mockConsumerGroup) PauseAll()                 {}
func (m *mockConsumerGroup) ResumeAll()                {}

type mockSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (m *mockSession) Claims() map[string][]int32               { return nil }
func (m *mockSession) MemberID() string                         { return "member" }
func (m *mockSession) GenerationID() int32                      { return 1 }
func (m *mockSession) MarkOffset(string, int32, int64, string)  {}
func (m *mockSession) Commit()                                  {}
func (m *mockSession) ResetOffset(string, int32, int64, string) {}
func (m *mockSession) Context() context.Context                 { return m.ctx }
func (m *mockSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	m.marked = append(m.marked, msg)
}

type mockClaim struct {
	topic     string
	partition int32
	messages  chan *sarama.ConsumerMessage
}

func (m *mockClaim) Topic() string                            { return m.topic }
func (m *mockClaim) Partition() int32                         { return m.partition }
func (m *mockClaim) InitialOffset() int64                     { return 0 }
func (m *mockClaim) HighWaterMarkOffset() int64               { return 0 }
func (m *mockClaim) Messages() <-chan *sarama.ConsumerMessage { return m.messages }

func eventMessage(t *testing.T, offset int64) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(NewWhiskyEvent(testChange(domain.ChangeCreated)))
	if err != nil {
		t.Fatal(err)
	}
	return &sarama.ConsumerMessage{Topic: TopicCatalogEvents, Offset: offset, Key: []byte("7"), Value: raw}
}

func TestNewConsumerErrors(t *testing.T) {
	handler := func(context.Context, WhiskyEvent) error { return nil }
	if _, err := NewConsumer([]string{"invalid-broker:9092"}, "group", []string{"topic"}, false, handler); err == nil {
		t.Fatal("expected new consumer error")
	}
}

func TestConsumerStartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumeCalls := 0
	errorsCh := make(chan error, 1)
	group := &mockConsumerGroup{
		errorsCh: errorsCh,
		consumeFn: func(_ context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
			consumeCalls++
			cancel()
			return nil
		},
		closeFn: func() error {
			close(errorsCh)
			return nil
		},
	}

	consumer := &Consumer{
		consumer: group,
		topics:   []string{TopicCatalogEvents},
		handler:  func(context.Context, WhiskyEvent) error { return nil },
		logger:   log.WithField("test", "consumer"),
	}

	errorsCh <- errors.New("background error")
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := consumer.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if consumeCalls == 0 {
		t.Fatal("expected consume call")
	}
}

func TestConsumerStopError(t *testing.T) {
	errorsCh := make(chan error)
	group := &mockConsumerGroup{errorsCh: errorsCh, closeFn: func() error {
		close(errorsCh)
		return errors.New("close failed")
	}}
	consumer := &Consumer{consumer: group, logger: log.WithField("test", "stop")}
	if err := consumer.Stop(); err == nil {
		t.Fatal("expected stop error")
	}
}

func TestConsumeClaim(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received []WhiskyEvent
	consumer := &Consumer{
		handler: func(_ context.Context, event WhiskyEvent) error {
			received = append(received, event)
			return nil
		},
		logger: log.WithField("test", "claim"),
	}

	session := &mockSession{ctx: ctx}
	claim := &mockClaim{topic: TopicCatalogEvents, messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- eventMessage(t, 1)
	claim.messages <- &sarama.ConsumerMessage{Topic: TopicCatalogEvents, Offset: 2, Value: []byte("garbage")}
	close(claim.messages)

	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(received) != 1 || received[0].WhiskyID != 7 {
		t.Fatalf("expected one parsed event, got %+v", received)
	}
	if len(session.marked) != 2 {
		t.Fatalf("both valid and malformed messages must be marked, got %d", len(session.marked))
	}
}

func TestConsumeClaimFailedHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &Consumer{
		handler: func(context.Context, WhiskyEvent) error { return errors.New("failed") },
		logger:  log.WithField("test", "claim-fail"),
	}

	session := &mockSession{ctx: ctx}
	claim := &mockClaim{topic: TopicCatalogEvents, messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- eventMessage(t, 1)
	close(claim.messages)

	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(session.marked) != 0 {
		t.Fatalf("failed message should not be marked, got %d", len(session.marked))
	}
}

func TestConsumeClaimStopsOnSessionDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	consumer := &Consumer{logger: log.WithField("test", "claim-done")}
	session := &mockSession{ctx: ctx}
	claim := &mockClaim{messages: make(chan *sarama.ConsumerMessage)}

	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
}

func TestConsumerSetupCleanup(t *testing.T) {
	consumer := &Consumer{}
	if err := consumer.Setup(nil); err != nil {
		t.Fatalf("setup should return nil: %v", err)
	}
	if err := consumer.Cleanup(nil); err != nil {
		t.Fatalf("cleanup should return nil: %v", err)
	}
}
