package budget

import (
	"math/rand"
	"strings"
	"time"
)

// AutoSelectedNote marks items the cheapest-option selector added on its own.
const AutoSelectedNote = "Auto-selected cheapest option"

// DealOption is one result of a deal search.
type DealOption struct {
	Title       string  `json:"title"`
	Provider    string  `json:"provider"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Rating      float64 `json:"rating,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
}

// CheapestDeal returns the lowest-priced option. The first one wins on ties.
// Options with a negative price are ignored.
func CheapestDeal(deals []DealOption) (DealOption, bool) {
	var best DealOption
	found := false
	for _, d := range deals {
		if d.Price < 0 {
			continue
		}
		if !found || d.Price < best.Price {
			best = d
			found = true
		}
	}
	return best, found
}

// ItemTypeForSchedule maps an itinerary entry type to the cart item type.
func ItemTypeForSchedule(scheduleType string) ItemType {
	t := strings.ToLower(scheduleType)
	switch {
	case t == "hotel":
		return ItemTypeStay
	case t == "flight" || strings.Contains(t, "transport"):
		return ItemTypeFlight
	case t == "attraction":
		return ItemTypeAttraction
	default:
		return ItemTypeOther
	}
}

// BuildItemFromDeal turns a deal picked for a schedule entry into a planned cart item.
func BuildItemFromDeal(deal DealOption, source ScheduleItem, segmentID string, autoAdded bool, now time.Time, rnd *rand.Rand) Item {
	itemSource := ItemSourceSchedule
	notes := ""
	if autoAdded {
		itemSource = ItemSourcePlanAuto
		notes = AutoSelectedNote
	}
	currency := deal.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	return Item{
		ID:           NewItemID(now, rnd),
		SegmentID:    segmentID,
		Source:       itemSource,
		Type:         ItemTypeForSchedule(source.Type),
		Title:        deal.Title,
		ProviderName: deal.Provider,
		Amount:       deal.Price,
		Currency:     currency,
		Status:       ItemStatusPlanned,
		StartDate:    source.Date,
		Notes:        notes,
		CreatedAt:    now,
	}
}
