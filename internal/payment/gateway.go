package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kabayemedia/ticketing/internal/config"
	"github.com/kabayemedia/ticketing/pkg/util"
)

// Result is the terminal outcome of a charge attempt.
type Result struct {
	Success       bool
	TransactionID string
	Message       string
}

// Gateway charges a phone number for a ticket. The purchase flow treats it as
// an opaque collaborator returning success or failure.
type Gateway interface {
	Charge(ctx context.Context, phone string, amount float64, reference string) (*Result, error)
}

// SimulatedGateway approximates a mobile-money provider: a configurable
// success rate and MM-prefixed transaction ids. Swap for a real adapter in
// production.
type SimulatedGateway struct {
	successRate float64
	delay       time.Duration
}

// NewSimulatedGateway constructs the gateway from payment config.
func NewSimulatedGateway(cfg config.PaymentConfig) *SimulatedGateway {
	rate := cfg.SuccessRate
	if rate <= 0 || rate > 1 {
		rate = 0.9
	}
	return &SimulatedGateway{
		successRate: rate,
		delay:       time.Duration(cfg.ChargeDelayMs) * time.Millisecond,
	}
}

// Charge simulates a charge against the provider.
func (g *SimulatedGateway) Charge(ctx context.Context, phone string, amount float64, reference string) (*Result, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if rand.Float64() >= g.successRate {
		return &Result{Success: false, Message: "payment processing failed"}, nil
	}

	code, err := util.NewHexCode(8)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success:       true,
		TransactionID: fmt.Sprintf("MM%s", code),
		Message:       "payment processed successfully",
	}, nil
}
