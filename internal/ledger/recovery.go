package ledger

import "github.com/omnitrip-budget-ledger/internal/domain/budget"

// InterruptedReason is recorded on items found in flight after a restart.
const InterruptedReason = "Interrupted before supplier confirmation"

// RecoverInterrupted moves every item left in "paid" to "failed" so that the next
// checkout picks it up again. Nothing can still be confirming them once the
// process that authorized the payment is gone. Segments locked by a running
// checkout are left alone. It returns the recovered items.
func (s *Store) RecoverInterrupted() []budget.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recovered []budget.Item
	for segmentID, items := range s.items {
		if s.checkouts[segmentID] {
			continue
		}
		for i := range items {
			if items[i].Status != budget.ItemStatusPaid {
				continue
			}
			items[i].Apply(budget.FailedPatch(InterruptedReason))
			recovered = append(recovered, items[i])
			s.publish(Event{Kind: EventItemUpdated, SegmentID: segmentID, Item: itemRef(items[i])})
		}
	}

	if len(recovered) > 0 {
		s.persistBudgetLocked()
		s.logger.Warn("recovered interrupted checkout items", "count", len(recovered))
	}
	return recovered
}
