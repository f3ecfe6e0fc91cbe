package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

func TestSimulatedSupplier_Confirm(t *testing.T) {
	cfg := config.FulfillmentConfig{DelayScale: 1, SuccessRate: 0.85}

	tests := []struct {
		name      string
		item      budget.Item
		random    *scriptedRandom
		wantDelay time.Duration
		want      budget.ItemConfirmation
	}{
		{
			name:      "flight confirmed with provider prefix",
			item:      budget.Item{ID: "a", Type: budget.ItemTypeFlight, ProviderName: "delta air"},
			random:    &scriptedRandom{floats: []float64{0.2}, ints: []int{4821}},
			wantDelay: FlightConfirmDelay,
			want:      budget.ItemConfirmation{ItemID: "a", Status: budget.ConfirmationConfirmed, ConfirmationCode: "DEL-4821"},
		},
		{
			name:      "insurance without provider uses default prefix",
			item:      budget.Item{ID: "b", Type: budget.ItemTypeInsurance},
			random:    &scriptedRandom{floats: []float64{0}, ints: []int{7}},
			wantDelay: InsuranceConfirmDelay,
			want:      budget.ItemConfirmation{ItemID: "b", Status: budget.ConfirmationConfirmed, ConfirmationCode: "OMNI-7"},
		},
		{
			name:      "short provider kept whole",
			item:      budget.Item{ID: "c", Type: budget.ItemTypeStay, ProviderName: "ab"},
			random:    &scriptedRandom{floats: []float64{0.1}, ints: []int{99999}},
			wantDelay: DefaultConfirmDelay,
			want:      budget.ItemConfirmation{ItemID: "c", Status: budget.ConfirmationConfirmed, ConfirmationCode: "AB-99999"},
		},
		{
			name:      "supplier rejection carries a reason",
			item:      budget.Item{ID: "d", Type: budget.ItemTypeAttraction, ProviderName: "Louvre"},
			random:    &scriptedRandom{floats: []float64{0.9}, ints: []int{1}},
			wantDelay: DefaultConfirmDelay,
			want:      budget.ItemConfirmation{ItemID: "d", Status: budget.ConfirmationFailed, Reason: "Price changed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleep{}
			s := NewSimulatedSupplier(newTestLogger(), cfg, WithRandom(tt.random), WithSleep(sleeper.Sleep))

			got, err := s.Confirm(context.Background(), tt.item)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []time.Duration{tt.wantDelay}, sleeper.calls)
		})
	}
}

func TestSimulatedSupplier_DelayScale(t *testing.T) {
	sleeper := &recordingSleep{}
	s := NewSimulatedSupplier(newTestLogger(), config.FulfillmentConfig{DelayScale: 0.5, SuccessRate: 1},
		WithRandom(&scriptedRandom{}), WithSleep(sleeper.Sleep))

	_, err := s.Confirm(context.Background(), budget.Item{ID: "a", Type: budget.ItemTypeFlight})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.calls)
}

func TestSimulatedSupplier_Cancelled(t *testing.T) {
	s := NewSimulatedSupplier(newTestLogger(), config.FulfillmentConfig{DelayScale: 1, SuccessRate: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Confirm(ctx, budget.Item{ID: "a", Type: budget.ItemTypeHotel})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirmationPrefix(t *testing.T) {
	assert.Equal(t, "OMNI", confirmationPrefix(""))
	assert.Equal(t, "HIL", confirmationPrefix("Hilton"))
	assert.Equal(t, "X", confirmationPrefix("x"))
}
