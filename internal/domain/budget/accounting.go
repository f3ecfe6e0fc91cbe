package budget

// BookingStatus is the booking state of an external itinerary item.
type BookingStatus string

const (
	BookingStatusBooked  BookingStatus = "booked"
	BookingStatusPending BookingStatus = "pending"
	BookingStatusNone    BookingStatus = "none"
)

const (
	// DefaultTotalBudget applies to segments that never had a ceiling set.
	DefaultTotalBudget = 2000.0
	// DefaultCurrency is the ledger's base currency.
	DefaultCurrency = "USD"
)

// ScheduleItem is an itinerary entry owned by the caller. The ledger reads it
// for accounting and never stores it.
type ScheduleItem struct {
	ID            string                 `json:"id"`
	Day           int                    `json:"day,omitempty"`
	Time          string                 `json:"time,omitempty"`
	Activity      string                 `json:"activity"`
	Location      string                 `json:"location,omitempty"`
	Type          string                 `json:"type"`
	CostEstimate  float64                `json:"costEstimate"`
	BookingStatus BookingStatus          `json:"bookingStatus"`
	Date          string                 `json:"date,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// SearchQuery returns metadata.searchQuery when it is a non-empty string.
func (s ScheduleItem) SearchQuery() string {
	if s.Metadata == nil {
		return ""
	}
	if q, ok := s.Metadata["searchQuery"].(string); ok {
		return q
	}
	return ""
}

// Accounting is a derived spend snapshot for one segment. It is never persisted.
type Accounting struct {
	TotalBudget            float64 `json:"totalBudget"`
	ScheduleConfirmedSpent float64 `json:"scheduleConfirmedSpent"`
	BudgetItemsSpent       float64 `json:"budgetItemsSpent"`
	SpentTotal             float64 `json:"spentTotal"`
	Remaining              float64 `json:"remaining"`
	Currency               string  `json:"currency"`
}

// ComputeAccounting derives the spend snapshot. Failed cart items do not count,
// schedule items count only when booked, and Remaining is not clamped at zero.
func ComputeAccounting(totalBudget float64, currency string, items []Item, schedule []ScheduleItem) Accounting {
	var scheduleSpent float64
	for _, s := range schedule {
		if s.BookingStatus == BookingStatusBooked {
			scheduleSpent += s.CostEstimate
		}
	}

	itemsSpent := BudgetItemsSpent(items)
	spent := scheduleSpent + itemsSpent

	return Accounting{
		TotalBudget:            totalBudget,
		ScheduleConfirmedSpent: scheduleSpent,
		BudgetItemsSpent:       itemsSpent,
		SpentTotal:             spent,
		Remaining:              totalBudget - spent,
		Currency:               currency,
	}
}

// BudgetItemsSpent sums the amounts of every item that has not failed.
func BudgetItemsSpent(items []Item) float64 {
	var total float64
	for _, item := range items {
		if item.Status != ItemStatusFailed {
			total += item.Amount
		}
	}
	return total
}
