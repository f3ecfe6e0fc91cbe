// Package receipt defines the archived receipt contract shared by the receipt
// archiver and the read side of the API.
package receipt

import (
	"context"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Repository stores archived order receipts.
type Repository interface {
	// Store archives the receipt. Storing an order id that already exists is a no-op
	// that reports ErrAlreadyArchived.
	Store(ctx context.Context, receipt *budget.OrderReceipt) error
	GetByOrderID(ctx context.Context, orderID string) (*budget.OrderReceipt, error)
	ListBySegment(ctx context.Context, segmentID string, limit int) ([]*budget.OrderReceipt, error)
}

// ErrReceiptNotFound indicates missing archived receipt
type ErrReceiptNotFound struct {
	OrderID string
}

func (e ErrReceiptNotFound) Error() string {
	return "receipt not found: " + e.OrderID
}

// ErrAlreadyArchived indicates the order was archived by an earlier delivery
type ErrAlreadyArchived struct {
	OrderID string
}

func (e ErrAlreadyArchived) Error() string {
	return "receipt already archived: " + e.OrderID
}

// ItemConfirmedEvent notifies downstream consumers that a supplier confirmed an item.
type ItemConfirmedEvent struct {
	OrderID          string          `json:"orderId"`
	SegmentID        string          `json:"segmentId"`
	ItemID           string          `json:"itemId"`
	ItemType         budget.ItemType `json:"itemType"`
	Title            string          `json:"title"`
	ProviderName     string          `json:"providerName,omitempty"`
	Amount           float64         `json:"amount"`
	Currency         string          `json:"currency"`
	ConfirmationCode string          `json:"confirmationCode"`
	ConfirmedAt      time.Time       `json:"confirmedAt"`
}

// ConfirmedEvents builds one event per confirmed line of the receipt.
func ConfirmedEvents(r *budget.OrderReceipt) []ItemConfirmedEvent {
	var events []ItemConfirmedEvent
	for _, line := range r.Items {
		if line.Confirmation.Status != budget.ConfirmationConfirmed {
			continue
		}
		currency := line.Item.Currency
		if currency == "" {
			currency = r.Currency
		}
		events = append(events, ItemConfirmedEvent{
			OrderID:          r.OrderID,
			SegmentID:        r.SegmentID,
			ItemID:           line.Item.ID,
			ItemType:         line.Item.Type,
			Title:            line.Item.Title,
			ProviderName:     line.Item.ProviderName,
			Amount:           line.Item.Amount,
			Currency:         currency,
			ConfirmationCode: line.Confirmation.ConfirmationCode,
			ConfirmedAt:      r.PaidAt,
		})
	}
	return events
}
