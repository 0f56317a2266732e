// Package payment abstracts the card gateway behind a single Charge call.
package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/google/uuid"
)

// DefaultSuccessRate is the approval probability of the simulated gateway.
const DefaultSuccessRate = 0.95

type ChargeRequest struct {
	BookingID      int64
	BookingCode    string
	Amount         model.Money
	Method         string
	CardNumber     string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	CardholderName string
}

// ChargeResult is the gateway's answer. A decline is a result, not an error.
type ChargeResult struct {
	Approved      bool
	TransactionID string
	DeclineReason string
}

// Gateway charges a card. Errors are reserved for transport failures.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// SimulatedGateway approves a charge with a fixed probability.
type SimulatedGateway struct {
	successRate float64

	mu     sync.Mutex
	random func() float64
}

type SimulatedOption func(*SimulatedGateway)

// WithRandom replaces the uniform [0,1) source.
func WithRandom(random func() float64) SimulatedOption {
	return func(g *SimulatedGateway) {
		g.random = random
	}
}

func NewSimulatedGateway(successRate float64, opts ...SimulatedOption) *SimulatedGateway {
	g := &SimulatedGateway{
		successRate: successRate,
		random:      rand.Float64,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, fmt.Errorf("charge booking %d: %w", req.BookingID, err)
	}

	g.mu.Lock()
	roll := g.random()
	g.mu.Unlock()

	if roll >= g.successRate {
		return ChargeResult{DeclineReason: "Payment failed. Please try again."}, nil
	}
	return ChargeResult{Approved: true, TransactionID: NewTransactionID()}, nil
}

// NewTransactionID returns "TXN" followed by 32 uppercase hex characters.
func NewTransactionID() string {
	id := uuid.New()
	return "TXN" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}
