// Package ledger holds the in-memory budget ledger: cart items per segment, segment
// budget ceilings and the payment method registry. Every mutation is broadcast to
// subscribers and mirrored to a snapshot repository in the background.
package ledger

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

// Persister receives the serialized state after each mutation. Implementations
// must not block; see Mirror.
type Persister interface {
	Persist(key string, value []byte)
}

// Options configures a Store.
type Options struct {
	BaseCurrency       string
	DefaultTotalBudget float64
	Persister          Persister
	Now                func() time.Time
}

// Store is the single source of truth for budget items and payment methods.
// All operations are synchronous and safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	items    map[string][]budget.Item
	totals   map[string]float64
	methods  []budget.PaymentMethod
	selected string
	// segments with a checkout between authorization and settlement
	checkouts map[string]bool

	currency     string
	defaultTotal float64
	persister    Persister
	now          func() time.Time
	logger       *slog.Logger

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
}

// NewStore creates a store seeded with the default payment methods.
func NewStore(logger *slog.Logger, opts Options) *Store {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = budget.DefaultCurrency
	}
	if opts.DefaultTotalBudget <= 0 {
		opts.DefaultTotalBudget = budget.DefaultTotalBudget
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	methods := budget.DefaultPaymentMethods()
	return &Store{
		items:        make(map[string][]budget.Item),
		totals:       make(map[string]float64),
		checkouts:    make(map[string]bool),
		methods:      methods,
		selected:     methods[0].ID,
		currency:     opts.BaseCurrency,
		defaultTotal: opts.DefaultTotalBudget,
		persister:    opts.Persister,
		now:          opts.Now,
		logger:       logger.With("component", "ledger_store"),
		subscribers:  make(map[int]chan Event),
	}
}

// BaseCurrency returns the currency used for accounting.
func (s *Store) BaseCurrency() string {
	return s.currency
}

// GetItems returns a copy of the segment's items in insertion order.
func (s *Store) GetItems(segmentID string) []budget.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items[segmentID]
	out := make([]budget.Item, len(items))
	copy(out, items)
	return out
}

// GetItem returns one item of the segment.
func (s *Store) GetItem(segmentID, itemID string) (budget.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexOf(s.items[segmentID], itemID)
	if idx < 0 {
		return budget.Item{}, false
	}
	return s.items[segmentID][idx], true
}

// AddItem appends the item to its segment. No dedup happens here; callers run
// budget.IsDuplicateItem first.
func (s *Store) AddItem(item budget.Item) budget.Item {
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

	s.items[item.SegmentID] = append(s.items[item.SegmentID], item)
	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemAdded, SegmentID: item.SegmentID, Item: itemRef(item)})
	return item
}

// UpdateItem merges patch into the item. It reports false, without error, when
// the item does not exist.
func (s *Store) UpdateItem(segmentID, itemID string, patch budget.ItemPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[segmentID]
	idx := indexOf(items, itemID)
	if idx < 0 {
		return false
	}
	items[idx].Apply(patch)

	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemUpdated, SegmentID: segmentID, Item: itemRef(items[idx])})
	return true
}

// DeleteItem removes the item. It reports false when nothing was removed.
// Status based delete policies are enforced by callers.
func (s *Store) DeleteItem(segmentID, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[segmentID]
	idx := indexOf(items, itemID)
	if idx < 0 {
		return false
	}
	removed := items[idx]
	s.items[segmentID] = append(items[:idx:idx], items[idx+1:]...)

	s.persistBudgetLocked()
	s.publish(Event{Kind: EventItemDeleted, SegmentID: segmentID, Item: itemRef(removed)})
	return true
}

// SetTotalBudget overwrites the segment's ceiling.
func (s *Store) SetTotalBudget(segmentID string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals[segmentID] = amount
	s.persistBudgetLocked()
	s.publish(Event{Kind: EventTotalBudgetSet, SegmentID: segmentID, TotalBudget: &amount})
}

// TotalBudget returns the segment's ceiling or the default when never set.
func (s *Store) TotalBudget(segmentID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalLocked(segmentID)
}

// GetAccounting derives the spend snapshot for the segment. The schedule items
// are supplied by the caller and never stored.
func (s *Store) GetAccounting(segmentID string, schedule []budget.ScheduleItem) budget.Accounting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return budget.ComputeAccounting(s.totalLocked(segmentID), s.currency, s.items[segmentID], schedule)
}

// Segments lists every segment that has items or a budget, sorted.
func (s *Store) Segments() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.items)+len(s.totals))
	for id := range s.items {
		seen[id] = struct{}{}
	}
	for id := range s.totals {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ListPaymentMethods returns a copy of the registered methods.
func (s *Store) ListPaymentMethods() []budget.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]budget.PaymentMethod, len(s.methods))
	copy(out, s.methods)
	return out
}

// SelectedPaymentMethod returns the method checkout will charge.
func (s *Store) SelectedPaymentMethod() (budget.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.methods {
		if m.ID == s.selected {
			return m, true
		}
	}
	return budget.PaymentMethod{}, false
}

// SelectPaymentMethod makes id the selected method. Unknown ids are ignored and
// reported as false.
func (s *Store) SelectPaymentMethod(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, m := range s.methods {
		if m.ID == id {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	s.selected = id
	s.persistPaymentsLocked()
	s.publish(Event{Kind: EventPaymentMethodSelected, PaymentMethodID: id})
	return true
}

// AddPaymentMethod registers a method and selects it.
func (s *Store) AddPaymentMethod(method budget.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.methods = append(s.methods, method)
	s.selected = method.ID
	s.persistPaymentsLocked()
	s.publish(Event{Kind: EventPaymentMethodAdded, PaymentMethodID: method.ID})
	s.publish(Event{Kind: EventPaymentMethodSelected, PaymentMethodID: method.ID})
}

func (s *Store) totalLocked(segmentID string) float64 {
	if total, ok := s.totals[segmentID]; ok {
		return total
	}
	return s.defaultTotal
}

func indexOf(items []budget.Item, itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}
