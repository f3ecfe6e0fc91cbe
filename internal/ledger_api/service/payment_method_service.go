package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// PaymentMethods is the registry as shown to clients.
type PaymentMethods struct {
	Methods    []budget.PaymentMethod `json:"methods"`
	SelectedID string                 `json:"selected,omitempty"`
}

// PaymentMethodServiceImpl implements the PaymentMethodService interface
type PaymentMethodServiceImpl struct {
	store  LedgerStore
	logger *slog.Logger
}

// NewPaymentMethodService creates a new payment method service
func NewPaymentMethodService(logger *slog.Logger, store LedgerStore) PaymentMethodService {
	return &PaymentMethodServiceImpl{
		store:  store,
		logger: logger.With("component", "payment_method_service"),
	}
}

func (s *PaymentMethodServiceImpl) ListPaymentMethods(_ context.Context) PaymentMethods {
	out := PaymentMethods{Methods: s.store.ListPaymentMethods()}
	if selected, ok := s.store.SelectedPaymentMethod(); ok {
		out.SelectedID = selected.ID
	}
	return out
}

// AddPaymentMethod validates and registers the method. A missing id is generated.
func (s *PaymentMethodServiceImpl) AddPaymentMethod(_ context.Context, method budget.PaymentMethod) (budget.PaymentMethod, error) {
	method.Label = strings.TrimSpace(method.Label)
	if method.Label == "" || !budget.IsValidPaymentMethodType(method.Type) {
		return budget.PaymentMethod{}, budget.ErrInvalidPaymentMethod
	}
	if method.ID == "" {
		method.ID = "pm_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	}
	for _, existing := range s.store.ListPaymentMethods() {
		if existing.ID == method.ID {
			return budget.PaymentMethod{}, budget.ErrInvalidPaymentMethod
		}
	}

	s.store.AddPaymentMethod(method)
	s.logger.Info("Payment method added and selected", "payment_method_id", method.ID, "type", method.Type)
	return method, nil
}

func (s *PaymentMethodServiceImpl) SelectPaymentMethod(_ context.Context, id string) error {
	if !s.store.SelectPaymentMethod(id) {
		return budget.ErrPaymentMethodNotFound
	}
	s.logger.Info("Payment method selected", "payment_method_id", id)
	return nil
}
