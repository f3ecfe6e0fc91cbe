package ledger

import "github.com/omnitrip-budget-ledger/internal/domain/budget"

// ItemGuard vetoes a mutation of the current item by returning an error.
type ItemGuard func(item budget.Item) error

// LockSegment marks a checkout as running for the segment. While locked, the
// guarded methods below reject every change to the segment's cart with
// budget.ErrCheckoutInProgress. It reports false if the segment is already locked.
func (s *Store) LockSegment(segmentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkouts[segmentID] {
		return false
	}
	s.checkouts[segmentID] = true
	return true
}

// UnlockSegment releases the checkout lock of the segment.
func (s *Store) UnlockSegment(segmentID string) {
	s.mu.Lock()
	delete(s.checkouts, segmentID)
	s.mu.Unlock()
}

// SegmentLocked reports whether a checkout holds the segment.
func (s *Store) SegmentLocked(segmentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkouts[segmentID]
}

// AddItemUnique inserts the item unless an identical one is already in its
// segment (budget.ErrDuplicateItem) or its id is taken there
// (budget.ErrDuplicateItemID). The checks and the insert happen under one lock.
func (s *Store) AddItemUnique(item budget.Item) (budget.Item, error) {
	if item.Status == "" {
		item.Status = budget.ItemStatusPlanned
	}
	if item.Currency == "" {
		item.Currency = s.currency
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkouts[item.SegmentID] {
		return budget.Item{}, budget.ErrCheckoutInProgress
	}
	if budget.IsDuplicateItem(budget.FingerprintOf(item), s.items[item.SegmentID]) {
		return budget.Item{}, budget.ErrDuplicateItem
	}
	if indexOf(s.items[item.SegmentID], item.ID) >= 0 {
		return budget.Item{}, budget.ErrDuplicateItemID
	}

	s.items[item.SegmentID] = append(s.items[item.SegmentID], item)
	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemAdded, SegmentID: item.SegmentID, Item: itemRef(item)})
	return item, nil
}

// UpdateItemGuarded applies patch when guard accepts the item as it is now.
// Unknown items yield budget.ErrItemNotFound.
func (s *Store) UpdateItemGuarded(segmentID, itemID string, patch budget.ItemPatch, guard ItemGuard) (budget.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkouts[segmentID] {
		return budget.Item{}, budget.ErrCheckoutInProgress
	}

	items := s.items[segmentID]
	idx := indexOf(items, itemID)
	if idx < 0 {
		return budget.Item{}, budget.ErrItemNotFound
	}
	if guard != nil {
		if err := guard(items[idx]); err != nil {
			return items[idx], err
		}
	}
	items[idx].Apply(patch)

	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemUpdated, SegmentID: segmentID, Item: itemRef(items[idx])})
	return items[idx], nil
}

// DeleteItemGuarded removes the item when guard accepts it. It reports false
// with a nil error when the item does not exist.
func (s *Store) DeleteItemGuarded(segmentID, itemID string, guard ItemGuard) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkouts[segmentID] {
		return false, budget.ErrCheckoutInProgress
	}

	items := s.items[segmentID]
	idx := indexOf(items, itemID)
	if idx < 0 {
		return false, nil
	}
	removed := items[idx]
	if guard != nil {
		if err := guard(removed); err != nil {
			return false, err
		}
	}
	s.items[segmentID] = append(items[:idx:idx], items[idx+1:]...)

	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemDeleted, SegmentID: segmentID, Item: itemRef(removed)})
	return true, nil
}
