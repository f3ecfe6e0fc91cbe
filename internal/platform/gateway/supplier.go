package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Base supplier latencies per item type, before FULFILLMENT_DELAY_SCALE.
const (
	FlightConfirmDelay    = 4 * time.Second
	InsuranceConfirmDelay = 1 * time.Second
	DefaultConfirmDelay   = 2500 * time.Millisecond
)

// FailureReasons are the supplier rejections the simulator picks from.
var FailureReasons = []string{"Sold out", "Price changed", "Supplier timeout"}

// SimulatedSupplier stands in for the booking APIs of flight, hotel and activity suppliers.
type SimulatedSupplier struct {
	cfg    config.FulfillmentConfig
	opts   options
	logger *slog.Logger
}

// NewSimulatedSupplier creates a supplier driven by cfg.
func NewSimulatedSupplier(logger *slog.Logger, cfg config.FulfillmentConfig, opts ...Option) *SimulatedSupplier {
	return &SimulatedSupplier{
		cfg:    cfg,
		opts:   buildOptions(opts),
		logger: logger.With("component", "supplier_gateway"),
	}
}

// Confirm books the item with its supplier. Supplier rejections come back as a
// failed confirmation, not as an error.
func (s *SimulatedSupplier) Confirm(ctx context.Context, item budget.Item) (budget.ItemConfirmation, error) {
	if err := s.opts.sleep(ctx, s.delayFor(item.Type)); err != nil {
		return budget.ItemConfirmation{}, fmt.Errorf("supplier confirmation interrupted: %w", err)
	}

	if s.opts.rnd.Float64() < s.cfg.SuccessRate {
		code := fmt.Sprintf("%s-%d", confirmationPrefix(item.ProviderName), s.opts.rnd.Intn(100000))
		s.logger.Debug("supplier confirmed item", "item_id", item.ID, "confirmation_code", code)
		return budget.ItemConfirmation{
			ItemID:           item.ID,
			Status:           budget.ConfirmationConfirmed,
			ConfirmationCode: code,
		}, nil
	}

	reason := FailureReasons[s.opts.rnd.Intn(len(FailureReasons))]
	s.logger.Debug("supplier rejected item", "item_id", item.ID, "reason", reason)
	return budget.ItemConfirmation{
		ItemID: item.ID,
		Status: budget.ConfirmationFailed,
		Reason: reason,
	}, nil
}

func (s *SimulatedSupplier) delayFor(t budget.ItemType) time.Duration {
	base := DefaultConfirmDelay
	switch t {
	case budget.ItemTypeFlight:
		base = FlightConfirmDelay
	case budget.ItemTypeInsurance:
		base = InsuranceConfirmDelay
	}
	return time.Duration(float64(base) * s.cfg.DelayScale)
}

// confirmationPrefix is the first three letters of the provider, upper-cased, or OMNI.
func confirmationPrefix(provider string) string {
	runes := []rune(provider)
	if len(runes) == 0 {
		return "OMNI"
	}
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}
