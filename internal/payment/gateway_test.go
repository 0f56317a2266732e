package payment

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulatedGatewayUsesSuccessRate(t *testing.T) {
	t.Parallel()

	rolls := []float64{0.10, 0.949, 0.95, 0.99}
	i := 0
	gateway := NewSimulatedGateway(DefaultSuccessRate, WithRandom(func() float64 {
		r := rolls[i]
		i++
		return r
	}))

	var approved []bool
	for range rolls {
		res, err := gateway.Charge(context.Background(), ChargeRequest{BookingID: 1})
		require.NoError(t, err)
		approved = append(approved, res.Approved)
		if res.Approved {
			require.Regexp(t, regexp.MustCompile(`^TXN[0-9A-F]{32}$`), res.TransactionID)
			require.Empty(t, res.DeclineReason)
		} else {
			require.Empty(t, res.TransactionID)
			require.NotEmpty(t, res.DeclineReason)
		}
	}
	require.Equal(t, []bool{true, true, false, false}, approved)
}

func TestSimulatedGatewayHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedGateway(1).Charge(ctx, ChargeRequest{BookingID: 9})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTransactionIDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewTransactionID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
