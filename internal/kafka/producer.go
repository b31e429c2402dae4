package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	logger  *slog.Logger
}

func NewProducer(brokers []string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logger,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published to Kafka", "topic", topic, "key", key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("connected to Kafka", "partitions", len(partitions))
	return nil
}

// Publisher is the interface EventWriter needs from a Producer.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// EventWriter publishes wizard events to one topic, keyed by wizard id.
type EventWriter struct {
	producer Publisher
	topic    string
}

func NewEventWriter(producer Publisher, topic string) *EventWriter {
	return &EventWriter{producer: producer, topic: topic}
}

func (w *EventWriter) Publish(ctx context.Context, event domain.WizardEvent) error {
	if w.producer == nil || w.topic == "" {
		return nil
	}
	return w.producer.Publish(ctx, w.topic, event.WizardID, event)
}

// DecodeEvent parses a message written by EventWriter.
func DecodeEvent(msg kafka.Message) (domain.WizardEvent, error) {
	var event domain.WizardEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return domain.WizardEvent{}, fmt.Errorf("decode wizard event: %w", err)
	}
	return event, nil
}
