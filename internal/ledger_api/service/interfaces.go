package service

import (
	"context"

	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/omnitrip-budget-ledger/internal/planning"
)

// LedgerStore is the part of the ledger store the API services use.
type LedgerStore interface {
	BaseCurrency() string
	GetItems(segmentID string) []budget.Item
	AddItemUnique(item budget.Item) (budget.Item, error)
	UpdateItemGuarded(segmentID, itemID string, patch budget.ItemPatch, guard ledger.ItemGuard) (budget.Item, error)
	DeleteItemGuarded(segmentID, itemID string, guard ledger.ItemGuard) (bool, error)
	SetTotalBudget(segmentID string, amount float64)
	GetAccounting(segmentID string, schedule []budget.ScheduleItem) budget.Accounting
	ListPaymentMethods() []budget.PaymentMethod
	SelectedPaymentMethod() (budget.PaymentMethod, bool)
	SelectPaymentMethod(id string) bool
	AddPaymentMethod(method budget.PaymentMethod)
}

// BudgetService defines the cart and budget operations exposed over HTTP
type BudgetService interface {
	// ListItems returns the segment's items in insertion order
	ListItems(ctx context.Context, segmentID string) []budget.Item

	// AddItem fills input defaults and inserts the item
	// Returns budget.ErrDuplicateItem when an identical item exists, budget.ErrDuplicateItemID
	// when the supplied id is taken and budget.ErrCheckoutInProgress while the segment pays
	AddItem(ctx context.Context, input NewItemInput) (budget.Item, error)

	// AddItemFromDeal maps a deal picked for a schedule entry into a planned item
	AddItemFromDeal(ctx context.Context, segmentID string, deal budget.DealOption, source budget.ScheduleItem) (budget.Item, error)

	// UpdateItem applies a user edit; only planned items can be edited
	// Returns budget.ErrItemNotFound, budget.ErrItemLocked or budget.ErrCheckoutInProgress
	UpdateItem(ctx context.Context, segmentID, itemID string, patch budget.ItemPatch) (budget.Item, error)

	// DeleteItem removes an item; unknown ids are a no-op
	// Returns budget.ErrItemLocked for paid and confirmed items and
	// budget.ErrCheckoutInProgress while the segment is being checked out
	DeleteItem(ctx context.Context, segmentID, itemID string) error

	SetTotalBudget(ctx context.Context, segmentID string, amount float64) (budget.Accounting, error)
	Accounting(ctx context.Context, segmentID string, schedule []budget.ScheduleItem) budget.Accounting
}

// PaymentMethodService manages the payment method registry
type PaymentMethodService interface {
	ListPaymentMethods(ctx context.Context) PaymentMethods
	// AddPaymentMethod registers and selects the method
	AddPaymentMethod(ctx context.Context, method budget.PaymentMethod) (budget.PaymentMethod, error)
	// SelectPaymentMethod returns budget.ErrPaymentMethodNotFound for unknown ids
	SelectPaymentMethod(ctx context.Context, id string) error
}

// CheckoutService runs checkouts; *checkout.Workflow implements it
type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*budget.OrderReceipt, error)
	Status(segmentID string) checkout.Step
}

// AutoBudgetService fills a segment from a plan; *planning.AutoBudgeter implements it
type AutoBudgetService interface {
	Apply(ctx context.Context, segmentID string, plan planning.Plan) (planning.Result, error)
}

// ReceiptService reads archived receipts
type ReceiptService interface {
	// GetReceipt returns receipt.ErrReceiptNotFound for unknown orders
	GetReceipt(ctx context.Context, orderID string) (*budget.OrderReceipt, error)
	ListReceipts(ctx context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error)
}

// EventSource streams ledger mutations; *ledger.Store implements it
type EventSource interface {
	Subscribe(buffer int) (<-chan ledger.Event, func())
}
