package outbox

import (
	"encoding/json"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores a checkout receipt until it is published to the receipt topic
type Message struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	SegmentID     string          `json:"segment_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a receipt in a pending outbox message.
func NewMessage(receipt *budget.OrderReceipt) (*Message, error) {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}

	return &Message{
		OrderID:   receipt.OrderID,
		SegmentID: receipt.SegmentID,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetReceipt decodes the receipt carried in the payload
func (m *Message) GetReceipt() (*budget.OrderReceipt, error) {
	var receipt budget.OrderReceipt
	if err := json.Unmarshal(m.Payload, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
