package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

const (
	ReasonAmountTooHigh = "Bank Declined: Amount too high for prototype limits."
	ReasonDeclined      = "Gateway Timeout or Card Declined."
)

// SimulatedAuthorizer stands in for the card processor.
type SimulatedAuthorizer struct {
	cfg    config.PaymentConfig
	opts   options
	logger *slog.Logger
}

// NewSimulatedAuthorizer creates an authorizer driven by cfg.
func NewSimulatedAuthorizer(logger *slog.Logger, cfg config.PaymentConfig, opts ...Option) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{
		cfg:    cfg,
		opts:   buildOptions(opts),
		logger: logger.With("component", "payment_gateway"),
	}
}

// Authorize places a hold for amount on method. Declines are returned as
// budget.AuthorizationError; a cancelled context returns the context error.
func (a *SimulatedAuthorizer) Authorize(ctx context.Context, amount float64, currency string, method budget.PaymentMethod) (budget.Authorization, error) {
	if err := a.opts.sleep(ctx, a.cfg.AuthDelay); err != nil {
		return budget.Authorization{}, fmt.Errorf("payment authorization interrupted: %w", err)
	}

	if amount > a.cfg.DeclineAbove {
		a.logger.Info("payment declined", "amount", amount, "currency", currency, "method_id", method.ID, "reason", ReasonAmountTooHigh)
		return budget.Authorization{}, budget.AuthorizationError{Reason: ReasonAmountTooHigh}
	}

	if a.opts.rnd.Float64() < a.cfg.FailureRate {
		a.logger.Info("payment declined", "amount", amount, "currency", currency, "method_id", method.ID, "reason", ReasonDeclined)
		return budget.Authorization{}, budget.AuthorizationError{Reason: ReasonDeclined}
	}

	now := a.opts.now()
	auth := budget.Authorization{
		TransactionID: fmt.Sprintf("txn_%d_%s", now.UnixMilli(), randomID(a.opts.rnd, 9)),
		Amount:        amount,
		Currency:      currency,
		AuthorizedAt:  now,
	}
	a.logger.Info("payment authorized", "transaction_id", auth.TransactionID, "amount", amount, "currency", currency, "method_id", method.ID)
	return auth, nil
}
