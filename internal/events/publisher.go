// Package events publishes booking lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Type string

const (
	BookingCreated Type = "booking.created"
	BookingPaid    Type = "booking.paid"
)

// Queues lists every queue the publisher declares.
var Queues = []Type{BookingCreated, BookingPaid}

type BookingEvent struct {
	Type           Type        `json:"type"`
	BookingID      int64       `json:"booking_id"`
	BookingCode    string      `json:"booking_code"`
	ScheduleID     int64       `json:"schedule_id"`
	PassengerCount int         `json:"passenger_count"`
	TotalAmount    model.Money `json:"total_amount"`
	TransactionID  string      `json:"transaction_id,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// NewBookingEvent builds an event of type t for booking.
func NewBookingEvent(t Type, booking *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           t,
		BookingID:      booking.ID,
		BookingCode:    booking.BookingCode,
		ScheduleID:     booking.ScheduleID,
		PassengerCount: booking.PassengerCount,
		TotalAmount:    booking.TotalAmount,
		OccurredAt:     at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends each event as a persistent JSON message to the queue named after its type.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     Channel
	logger *zap.Logger
}

// Dial connects to the broker and declares the booking queues.
func Dial(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	publisher, err := NewAMQPPublisher(ch, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	publisher.conn = conn
	return publisher, nil
}

func NewAMQPPublisher(ch Channel, logger *zap.Logger) (*AMQPPublisher, error) {
	for _, queue := range Queues {
		if _, err := ch.QueueDeclare(string(queue), true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}
	return &AMQPPublisher{ch: ch, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", string(event.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("type", string(event.Type)),
		zap.Int64("booking_id", event.BookingID),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("close amqp channel: %w", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close amqp connection: %w", err)
		}
	}
	return nil
}
