package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabayemedia/ticketing/internal/config"
)

func TestChargeAlwaysSucceedsAtFullRate(t *testing.T) {
	g := &SimulatedGateway{successRate: 1.0}

	for i := 0; i < 20; i++ {
		result, err := g.Charge(context.Background(), "0771234567", 25.0, "TKTREF")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Regexp(t, `^MM[0-9A-F]{16}$`, result.TransactionID)
	}
}

func TestChargeAlwaysFailsAtZeroRate(t *testing.T) {
	g := &SimulatedGateway{successRate: 0}

	for i := 0; i < 20; i++ {
		result, err := g.Charge(context.Background(), "0771234567", 25.0, "TKTREF")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.TransactionID)
		assert.NotEmpty(t, result.Message)
	}
}

func TestChargeHonorsContextDuringDelay(t *testing.T) {
	g := &SimulatedGateway{successRate: 1.0, delay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Charge(ctx, "0771234567", 25.0, "TKTREF")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSimulatedGatewayClampsRate(t *testing.T) {
	cases := []struct {
		name string
		rate float64
		want float64
	}{
		{"zero falls back", 0, 0.9},
		{"negative falls back", -1, 0.9},
		{"above one falls back", 1.5, 0.9},
		{"valid kept", 0.5, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewSimulatedGateway(config.PaymentConfig{SuccessRate: tc.rate})
			assert.Equal(t, tc.want, g.successRate)
		})
	}
}
