package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderEvent is published on every order and flight state change and feeds
// the notification worker.
type OrderEvent struct {
	Type       string    `json:"type"`
	Reference  string    `json:"reference"`
	OrderID    int64     `json:"order_id"`
	FlightNum  string    `json:"flight_num"`
	Email      string    `json:"email"`
	SeatCount  int       `json:"seat_count"`
	TotalCents int64     `json:"total_cents"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FlightEvent is published when a manager cancels a whole flight.
type FlightEvent struct {
	Type            string    `json:"type"`
	FlightNum       string    `json:"flight_num"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Departure       time.Time `json:"departure"`
	CancelledOrders int64     `json:"cancelled_orders"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = p.Publish(ctx, topic, key, payload); lastErr == nil {
			return nil
		}
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
