package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/boat_booking/internal/cache"
	"github.com/Freeeeeet/boat_booking/internal/events"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/payment"
	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/memory"
	"github.com/Freeeeeet/boat_booking/internal/repository/storetest"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

type harness struct {
	store     repository.Store
	schedules *ScheduleService
	bookings  *BookingService
	payments  *PaymentService
	gateway   *stubGateway
	publisher *recordingPublisher
	notifier  *recordingNotifier
	cache     *recordingCache
}

func newHarness(t *testing.T, ledger *SeatLedger, opts ...Option) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewStore(), ledger, opts...)
}

func newHarnessWithStore(t *testing.T, store repository.Store, ledger *SeatLedger, opts ...Option) *harness {
	t.Helper()

	logger := zaptest.NewLogger(t)
	h := &harness{
		store:     store,
		gateway:   &stubGateway{approve: true},
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		cache:     &recordingCache{},
	}
	if ledger == nil {
		ledger = NewSeatLedger()
	}

	opts = append([]Option{
		WithPublisher(h.publisher),
		WithNotifier(h.notifier),
		WithScheduleCache(h.cache),
	}, opts...)

	h.schedules = NewScheduleService(store, logger, opts...)
	h.bookings = NewBookingService(store, ledger, logger, opts...)
	h.payments = NewPaymentService(store, h.gateway, h.bookings, logger, opts...)
	return h
}

func (h *harness) seed(t *testing.T, capacity int, price model.Money) storetest.Fixture {
	t.Helper()
	return storetest.Seed(t, h.store, capacity, price)
}

func janeDoe(scheduleID int64, passengers int) BookingInput {
	return BookingInput{
		ScheduleID:     scheduleID,
		CustomerName:   "Jane Doe",
		CustomerEmail:  "jane@x.com",
		CustomerPhone:  "+628123",
		PassengerCount: passengers,
	}
}

func validCard() PaymentInput {
	return PaymentInput{
		PaymentMethod:  "credit_card",
		CardNumber:     "4111 1111 1111 1111",
		ExpiryMonth:    12,
		ExpiryYear:     2099,
		CVV:            "123",
		CardholderName: "JANE DOE",
	}
}

func constantCodes(id uuid.UUID) func() uuid.UUID {
	return func() uuid.UUID { return id }
}

type stubGateway struct {
	mu       sync.Mutex
	approve  bool
	err      error
	requests []payment.ChargeRequest
}

func (g *stubGateway) Charge(_ context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.err != nil {
		return payment.ChargeResult{}, g.err
	}
	if !g.approve {
		return payment.ChargeResult{DeclineReason: "Payment failed. Please try again."}, nil
	}
	return payment.ChargeResult{Approved: true, TransactionID: payment.NewTransactionID()}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []events.Type
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type recordingNotifier struct {
	mu   sync.Mutex
	paid []string
}

func (n *recordingNotifier) BookingPaid(_ context.Context, booking *model.Booking, _ *model.Payment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, booking.BookingCode)
	return nil
}

// recordingCache is an in-process ScheduleCache that counts invalidations.
type recordingCache struct {
	mu            sync.Mutex
	entries       map[model.ScheduleFilter][]*model.Schedule
	hits          int
	invalidations int
}

func (c *recordingCache) GetOrLoad(ctx context.Context, filter model.ScheduleFilter, load cache.LoadFunc) ([]*model.Schedule, error) {
	c.mu.Lock()
	schedules, ok := c.entries[filter]
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if ok {
		return append([]*model.Schedule(nil), schedules...), nil
	}

	schedules, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[model.ScheduleFilter][]*model.Schedule)
	}
	c.entries[filter] = schedules
	return append([]*model.Schedule(nil), schedules...), nil
}

func (c *recordingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.invalidations++
}
