package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	failOn    string
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if name == f.failOn {
		return amqp.Queue{}, errors.New("access refused")
	}
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if exchange != "" {
		return errors.New("unexpected exchange")
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherDeclaresQueuesAndPublishesJSON(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	publisher, err := NewAMQPPublisher(ch, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, []string{"booking.created", "booking.paid"}, ch.declared)

	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	booking := &model.Booking{ID: 4, BookingCode: "FBAB12CD34", ScheduleID: 2, PassengerCount: 3, TotalAmount: 105000000}
	event := NewBookingEvent(BookingPaid, booking, at)
	event.TransactionID = "TXN00"
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Equal(t, []string{"booking.paid"}, ch.keys)
	msg := ch.published[0]
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	require.Equal(t, "FBAB12CD34", decoded["booking_code"])
	require.Equal(t, 1050000.0, decoded["total_amount"])
	require.Equal(t, "TXN00", decoded["transaction_id"])

	require.NoError(t, publisher.Close())
	require.True(t, ch.closed)
}

func TestPublisherFailsWhenQueueCannotBeDeclared(t *testing.T) {
	t.Parallel()

	_, err := NewAMQPPublisher(&fakeChannel{failOn: "booking.paid"}, zaptest.NewLogger(t))
	require.ErrorContains(t, err, "declare queue booking.paid")
}
