package budget

import "time"

// ConfirmationStatus is the terminal outcome of one fulfillment call.
type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationFailed    ConfirmationStatus = "failed"
)

// ItemConfirmation is the supplier outcome for one item.
type ItemConfirmation struct {
	ItemID           string             `json:"itemId" bson:"item_id"`
	Status           ConfirmationStatus `json:"status" bson:"status"`
	ConfirmationCode string             `json:"confirmationCode,omitempty" bson:"confirmation_code,omitempty"`
	Reason           string             `json:"reason,omitempty" bson:"reason,omitempty"`
}

// Patch converts the outcome into the ledger update for the item.
func (c ItemConfirmation) Patch() ItemPatch {
	if c.Status == ConfirmationConfirmed {
		return ConfirmedPatch(c.ConfirmationCode)
	}
	return FailedPatch(c.Reason)
}

// ReceiptLine is an attempted item annotated with its outcome.
type ReceiptLine struct {
	Item         Item             `json:"item" bson:"item"`
	Confirmation ItemConfirmation `json:"confirmation" bson:"confirmation"`
}

// OrderReceipt summarises one completed checkout run.
type OrderReceipt struct {
	OrderID       string        `json:"orderId" bson:"order_id"`
	SegmentID     string        `json:"segmentId" bson:"segment_id"`
	PaidAt        time.Time     `json:"paidAt" bson:"paid_at"`
	Method        PaymentMethod `json:"method" bson:"method"`
	Currency      string        `json:"currency" bson:"currency"`
	Subtotal      float64       `json:"subtotal" bson:"subtotal"`
	Fees          float64       `json:"fees" bson:"fees"`
	Total         float64       `json:"total" bson:"total"`
	Items         []ReceiptLine `json:"items" bson:"items"`
	CorrelationID string        `json:"correlationId,omitempty" bson:"correlation_id,omitempty"`
}

// ConfirmedCount returns how many lines ended confirmed.
func (r *OrderReceipt) ConfirmedCount() int {
	n := 0
	for _, line := range r.Items {
		if line.Confirmation.Status == ConfirmationConfirmed {
			n++
		}
	}
	return n
}

// FailedCount returns how many lines ended failed.
func (r *OrderReceipt) FailedCount() int {
	return len(r.Items) - r.ConfirmedCount()
}
