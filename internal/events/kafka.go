package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaBroker publishes through one long-lived writer; kafka-go writers are
// safe for concurrent use and pick the topic per message.
type KafkaBroker struct {
	brokers    []string
	writer     *kafkaGo.Writer
	retryDelay time.Duration
}

// messageReader is the part of *kafkaGo.Reader the consumer loop uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkaGo.Message, error)
}

// NewKafkaBroker creates a new Kafka publisher and subscriber.
func NewKafkaBroker(brokers []string) *KafkaBroker {
	return &KafkaBroker{
		brokers:    brokers,
		retryDelay: time.Second,
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.LeastBytes{},
			BatchTimeout:           50 * time.Millisecond,
			MaxAttempts:            3,
			WriteTimeout:           2 * time.Second,
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}

func (k *KafkaBroker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	consume(ctx, reader, topic, k.retryDelay, handler)
}

// consume reads until ctx is done, waiting delay after a failed read so a
// dead broker does not spin the loop.
func consume(ctx context.Context, r messageReader, topic string, delay time.Duration, handler func(ctx context.Context, payload []byte) error) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Consumer shutting down", "topic", topic)
				return
			}
			slog.Error("Error reading message", "topic", topic, "err", err)
			select {
			case <-ctx.Done():
				slog.Info("Consumer shutting down", "topic", topic)
				return
			case <-time.After(delay):
			}
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			slog.Error("Error handling message", "topic", topic, "err", err)
		}
	}
}

func (k *KafkaBroker) Close() error {
	return k.writer.Close()
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// Noop otherwise.
func NewPublisher(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewKafkaBroker(brokers)
}
