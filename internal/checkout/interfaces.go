package checkout

import (
	"context"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Ledger is the part of the ledger store the workflow reads and writes.
// Item mutations go through UpdateItem only. A locked segment rejects cart
// changes from every other writer until it is unlocked.
type Ledger interface {
	BaseCurrency() string
	GetItems(segmentID string) []budget.Item
	GetItem(segmentID, itemID string) (budget.Item, bool)
	UpdateItem(segmentID, itemID string, patch budget.ItemPatch) bool
	SelectedPaymentMethod() (budget.PaymentMethod, bool)
	LockSegment(segmentID string) bool
	UnlockSegment(segmentID string)
}

// Authorizer places the payment hold. Declines are budget.AuthorizationError.
type Authorizer interface {
	Authorize(ctx context.Context, amount float64, currency string, method budget.PaymentMethod) (budget.Authorization, error)
}

// Confirmer books one item with its supplier.
type Confirmer interface {
	Confirm(ctx context.Context, item budget.Item) (budget.ItemConfirmation, error)
}

// ReceiptRecorder hands a finished receipt to the downstream pipeline.
type ReceiptRecorder interface {
	RecordReceipt(ctx context.Context, receipt *budget.OrderReceipt) error
}
