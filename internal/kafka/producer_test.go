package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	messages []kafkago.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer)

	event := map[string]interface{}{"event": "label.generated", "shipment_id": "ship-1"}
	if err := producer.Publish(context.Background(), "ship-1", event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "ship-1" {
		t.Errorf("expected the message keyed by shipment id, got %q", msg.Key)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("message value is not JSON: %v", err)
	}
	if decoded["event"] != "label.generated" {
		t.Errorf("unexpected event payload %v", decoded)
	}
}

func TestPublishWriteError(t *testing.T) {
	wantErr := errors.New("broker unavailable")
	producer := NewProducerWithWriter(&fakeWriter{writeErr: wantErr})
	if err := producer.Publish(context.Background(), "ship-1", map[string]string{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected the write error propagated, got %v", err)
	}
}

func TestClose(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer)
	if err := producer.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !writer.closed {
		t.Error("expected the underlying writer closed")
	}
}
