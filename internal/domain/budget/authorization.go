package budget

import "time"

// Authorization is a successful payment hold. TransactionID becomes the order id.
type Authorization struct {
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	AuthorizedAt  time.Time `json:"authorizedAt"`
}

// AuthorizationError is a decline reported by the payment gateway.
type AuthorizationError struct {
	Reason string
}

func (e AuthorizationError) Error() string {
	return "payment authorization failed: " + e.Reason
}
