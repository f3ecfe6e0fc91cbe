package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Fixed snapshot keys. The payload shapes are shared with the mobile client and
// are not versioned.
const (
	BudgetStoreKey    = "omnitrip_budget_store"
	PaymentMethodsKey = "omnitrip_payment_methods"
)

type budgetSnapshot struct {
	Items  map[string][]budget.Item `json:"items"`
	Totals map[string]float64       `json:"totals"`
}

type paymentSnapshot struct {
	Methods  []budget.PaymentMethod `json:"methods"`
	Selected string                 `json:"selected"`
}

// Load replaces the in-memory state with the persisted snapshots. A key that was
// never written leaves the corresponding defaults in place.
func (s *Store) Load(ctx context.Context, repo budget.SnapshotRepository) error {
	budgetData, err := loadKey(ctx, repo, BudgetStoreKey)
	if err != nil {
		return err
	}
	paymentData, err := loadKey(ctx, repo, PaymentMethodsKey)
	if err != nil {
		return err
	}

	var bs budgetSnapshot
	if budgetData != nil {
		if err := json.Unmarshal(budgetData, &bs); err != nil {
			return fmt.Errorf("failed to decode %s: %w", BudgetStoreKey, err)
		}
	}
	var ps paymentSnapshot
	if paymentData != nil {
		if err := json.Unmarshal(paymentData, &ps); err != nil {
			return fmt.Errorf("failed to decode %s: %w", PaymentMethodsKey, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if budgetData != nil {
		s.items = make(map[string][]budget.Item, len(bs.Items))
		for segmentID, items := range bs.Items {
			s.items[segmentID] = items
		}
		s.totals = make(map[string]float64, len(bs.Totals))
		for segmentID, total := range bs.Totals {
			s.totals[segmentID] = total
		}
	}
	if paymentData != nil && len(ps.Methods) > 0 {
		s.methods = ps.Methods
		s.selected = ps.Selected
	}

	s.logger.Info("ledger state loaded",
		"segments", len(s.items), "payment_methods", len(s.methods), "selected_method", s.selected)
	return nil
}

func loadKey(ctx context.Context, repo budget.SnapshotRepository, key string) ([]byte, error) {
	data, err := repo.Load(ctx, key)
	if errors.Is(err, budget.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return data, nil
}

// persistBudgetLocked hands the budget snapshot to the persister. Called with s.mu held.
func (s *Store) persistBudgetLocked() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(budgetSnapshot{Items: s.items, Totals: s.totals})
	if err != nil {
		s.logger.Error("failed to encode budget snapshot", "error", err)
		return
	}
	s.persister.Persist(BudgetStoreKey, data)
}

// persistPaymentsLocked hands the payment method snapshot to the persister. Called with s.mu held.
func (s *Store) persistPaymentsLocked() {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(paymentSnapshot{Methods: s.methods, Selected: s.selected})
	if err != nil {
		s.logger.Error("failed to encode payment method snapshot", "error", err)
		return
	}
	s.persister.Persist(PaymentMethodsKey, data)
}
