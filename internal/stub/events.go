package stub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// RideEvent is published for every lifecycle transition the stub applies.
type RideEvent struct {
	RideID  string    `json:"ride_id"`
	Event   string    `json:"event"` // offer_created, offer_selected, ride_completed, ride_cancelled
	OfferID string    `json:"offer_id,omitempty"`
	At      time.Time `json:"at"`
}

// EventProducer writes ride lifecycle events to Kafka when brokers are
// configured; a nil producer is a no-op.
type EventProducer struct {
	writer *kafka.Writer
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &EventProducer{writer: w}
}

func (e *EventProducer) Publish(ev RideEvent) error {
	if e == nil || e.writer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev.At = time.Now().UTC()
	b, _ := json.Marshal(ev)
	return e.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.RideID), Value: b})
}

func (e *EventProducer) Close() error {
	if e == nil || e.writer == nil {
		return nil
	}
	return e.writer.Close()
}
