// Package events publishes trip domain events for downstream consumers
// (storefront cache invalidation, notifications). Publishing is strictly
// best-effort: failures are logged and never propagated into the request
// that triggered them.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"tripdesk/pkg/logger"
)

const (
	TripBooked    = "trip.booked"
	TripCancelled = "trip.cancelled"
	TripArchived  = "trip.archived"
	TripPurged    = "trip.purged"
)

type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher returns a no-op publisher when no brokers are configured.
func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		log.Info("Event publishing disabled, no Kafka brokers configured")
		return &Publisher{log: log}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("Event publisher initialized", "brokers", brokers, "topic", topic)
	return &Publisher{writer: writer, log: log}
}

// Publish emits one event keyed by tripID so per-trip ordering is preserved.
func (p *Publisher) Publish(ctx context.Context, eventType, tripID string, data any) {
	if p.writer == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		p.log.Error("Failed to marshal event payload", "type", eventType, "trip_id", tripID, "error", err)
		return
	}

	envelope, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		p.log.Error("Failed to marshal event envelope", "type", eventType, "trip_id", tripID, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tripID),
		Value: envelope,
	})
	if err != nil {
		p.log.Error("Failed to publish event", "type", eventType, "trip_id", tripID, "error", err)
	}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
