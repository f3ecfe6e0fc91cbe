package budget

import "errors"

var (
	// ErrDuplicateItem is returned by insertion paths when the fingerprint already exists.
	ErrDuplicateItem = errors.New("an identical item is already in the budget")
	// ErrDuplicateItemID is returned when an inserted item reuses an id already in its segment.
	ErrDuplicateItemID = errors.New("an item with this id already exists in the segment")
	// ErrCheckoutInProgress is returned for cart changes while the segment is being checked out.
	ErrCheckoutInProgress = errors.New("a checkout is already running for this segment")
	// ErrItemNotFound is returned by boundary services; the store itself never raises it.
	ErrItemNotFound = errors.New("budget item not found")
	// ErrItemLocked is returned when a manual edit or delete targets an item past planning.
	ErrItemLocked = errors.New("budget item can no longer be changed")
	// ErrPaymentMethodNotFound is returned when selecting an unknown method.
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	// ErrInvalidAmount is returned for negative amounts or budgets.
	ErrInvalidAmount = errors.New("amount must not be negative")
	// ErrInvalidItemType is returned for item types outside the known set.
	ErrInvalidItemType = errors.New("unknown budget item type")
	// ErrInvalidItemSource is returned for provenance tags outside the known set.
	ErrInvalidItemSource = errors.New("unknown budget item source")
	// ErrInvalidPaymentMethod is returned when a new payment method is incomplete.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrSnapshotNotFound is returned by snapshot repositories for keys never written.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
