package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the producer relies on, so tests
// can inject a fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes label events to a Kafka topic.
type Producer struct {
	writer Writer
}

// NewProducer initializes a producer writing to the given broker and
// topic.
func NewProducer(brokerURL, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerURL),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// NewProducerWithWriter wraps an existing writer, used by tests.
func NewProducerWithWriter(w Writer) *Producer {
	return &Producer{writer: w}
}

// Publish JSON-encodes the value and sends it keyed by the shipment id,
// so events for the same shipment stay in one partition.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Println("failed to marshal kafka payload:", err)
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Println("kafka write error:", err)
		return err
	}
	return nil
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
