package ledger

import (
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// EventKind names a store mutation.
type EventKind string

const (
	EventItemAdded             EventKind = "item.added"
	EventItemUpdated           EventKind = "item.updated"
	EventItemDeleted           EventKind = "item.deleted"
	EventTotalBudgetSet        EventKind = "budget.total_set"
	EventPaymentMethodAdded    EventKind = "payment_method.added"
	EventPaymentMethodSelected EventKind = "payment_method.selected"
)

// Event describes one applied mutation. Item is a copy taken after the change
// (before it, for deletions).
type Event struct {
	Kind            EventKind    `json:"kind"`
	SegmentID       string       `json:"segmentId,omitempty"`
	Item            *budget.Item `json:"item,omitempty"`
	TotalBudget     *float64     `json:"totalBudget,omitempty"`
	PaymentMethodID string       `json:"paymentMethodId,omitempty"`
	At              time.Time    `json:"at"`
}

// Subscribe registers a listener with the given channel capacity. Events are
// delivered without blocking the writer: when the channel is full the event is
// dropped for that subscriber. The returned cancel func closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once bool
	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(s.subscribers, id)
		close(ch)
	}
	return ch, cancel
}

// publish must be called with s.mu held so that subscribers observe mutations in order.
func (s *Store) publish(evt Event) {
	evt.At = s.now()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
			s.logger.Warn("dropping ledger event for slow subscriber",
				"subscriber", id, "kind", evt.Kind, "segment_id", evt.SegmentID)
		}
	}
}

func itemRef(item budget.Item) *budget.Item {
	return &item
}
