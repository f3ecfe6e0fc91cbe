package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

const (
	defaultItemTitle    = "Unknown Item"
	defaultItemProvider = "Generic"
)

// NewItemInput is a cart item as submitted by a client. Empty fields take the
// manual-add defaults.
type NewItemInput struct {
	ID           string
	SegmentID    string
	Source       budget.ItemSource
	Type         budget.ItemType
	Title        string
	ProviderName string
	Amount       *float64
	Currency     string
	StartDate    string
	EndDate      string
	Travelers    int
	Notes        string
}

// BudgetServiceImpl implements the BudgetService interface
type BudgetServiceImpl struct {
	store  LedgerStore
	now    func() time.Time
	logger *slog.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(logger *slog.Logger, store LedgerStore) BudgetService {
	return &BudgetServiceImpl{
		store:  store,
		now:    time.Now,
		logger: logger.With("component", "budget_service"),
	}
}

func (s *BudgetServiceImpl) ListItems(_ context.Context, segmentID string) []budget.Item {
	return s.store.GetItems(segmentID)
}

// AddItem fills defaults, validates and inserts the item through the dedup gate
func (s *BudgetServiceImpl) AddItem(_ context.Context, input NewItemInput) (budget.Item, error) {
	item := budget.Item{
		ID:           input.ID,
		SegmentID:    input.SegmentID,
		Source:       input.Source,
		Type:         input.Type,
		Title:        strings.TrimSpace(input.Title),
		ProviderName: strings.TrimSpace(input.ProviderName),
		Currency:     input.Currency,
		Status:       budget.ItemStatusPlanned,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Travelers:    input.Travelers,
		Notes:        input.Notes,
		CreatedAt:    s.now(),
	}
	if input.Amount != nil {
		item.Amount = *input.Amount
	}
	if item.ID == "" {
		item.ID = budget.NewItemID(item.CreatedAt, nil)
	}
	if item.Source == "" {
		item.Source = budget.ItemSourceManual
	}
	if item.Type == "" {
		item.Type = budget.ItemTypeOther
	}
	if item.Title == "" {
		item.Title = defaultItemTitle
	}
	if item.ProviderName == "" {
		item.ProviderName = defaultItemProvider
	}
	if item.Currency == "" {
		item.Currency = s.store.BaseCurrency()
	}

	if err := validateItem(item); err != nil {
		return budget.Item{}, err
	}
	return s.insert(item)
}

// AddItemFromDeal maps the deal with the schedule entry as source and inserts it
func (s *BudgetServiceImpl) AddItemFromDeal(_ context.Context, segmentID string, deal budget.DealOption, source budget.ScheduleItem) (budget.Item, error) {
	if deal.Price < 0 {
		return budget.Item{}, budget.ErrInvalidAmount
	}
	if deal.Currency == "" {
		deal.Currency = s.store.BaseCurrency()
	}

	item := budget.BuildItemFromDeal(deal, source, segmentID, false, s.now(), nil)
	return s.insert(item)
}

func (s *BudgetServiceImpl) insert(item budget.Item) (budget.Item, error) {
	added, err := s.store.AddItemUnique(item)
	if err != nil {
		s.logger.Info("Rejected budget item", "segment_id", item.SegmentID, "title", item.Title, "error", err)
		return budget.Item{}, err
	}

	s.logger.Info("Budget item added",
		"segment_id", added.SegmentID,
		"item_id", added.ID,
		"type", added.Type,
		"amount", added.Amount,
	)
	return added, nil
}

// UpdateItem applies a user edit. Outcome fields belong to checkout and are dropped
// from the patch.
func (s *BudgetServiceImpl) UpdateItem(_ context.Context, segmentID, itemID string, patch budget.ItemPatch) (budget.Item, error) {
	patch.Status = nil
	patch.ConfirmationCode = nil
	patch.FailReason = nil

	if patch.Amount != nil && *patch.Amount < 0 {
		return budget.Item{}, budget.ErrInvalidAmount
	}
	if patch.Type != nil && !budget.IsValidItemType(*patch.Type) {
		return budget.Item{}, budget.ErrInvalidItemType
	}

	return s.store.UpdateItemGuarded(segmentID, itemID, patch, func(current budget.Item) error {
		if !current.IsUserEditable() {
			return budget.ErrItemLocked
		}
		return nil
	})
}

// DeleteItem removes the item unless it is paid or confirmed
func (s *BudgetServiceImpl) DeleteItem(_ context.Context, segmentID, itemID string) error {
	removed, err := s.store.DeleteItemGuarded(segmentID, itemID, func(current budget.Item) error {
		if !current.IsUserDeletable() {
			return budget.ErrItemLocked
		}
		return nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.logger.Info("Budget item deleted", "segment_id", segmentID, "item_id", itemID)
	}
	return nil
}

func (s *BudgetServiceImpl) SetTotalBudget(_ context.Context, segmentID string, amount float64) (budget.Accounting, error) {
	if amount < 0 {
		return budget.Accounting{}, budget.ErrInvalidAmount
	}
	s.store.SetTotalBudget(segmentID, amount)
	return s.store.GetAccounting(segmentID, nil), nil
}

func (s *BudgetServiceImpl) Accounting(_ context.Context, segmentID string, schedule []budget.ScheduleItem) budget.Accounting {
	return s.store.GetAccounting(segmentID, schedule)
}

func validateItem(item budget.Item) error {
	if item.Amount < 0 {
		return budget.ErrInvalidAmount
	}
	if !budget.IsValidItemType(item.Type) {
		return budget.ErrInvalidItemType
	}
	if !budget.IsValidItemSource(item.Source) {
		return budget.ErrInvalidItemSource
	}
	return nil
}
