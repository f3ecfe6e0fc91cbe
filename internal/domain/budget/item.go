package budget

import (
	"fmt"
	"math/rand"
	"time"
)

// ItemSource tags where a budget item came from. It is informational only.
type ItemSource string

const (
	ItemSourceSchedule ItemSource = "schedule"
	ItemSourceExtras   ItemSource = "extras"
	ItemSourceManual   ItemSource = "manual"
	ItemSourcePlanAuto ItemSource = "plan_auto"
)

// ItemType classifies a budget item.
type ItemType string

const (
	ItemTypeFlight     ItemType = "flight"
	ItemTypeHotel      ItemType = "hotel"
	ItemTypeAttraction ItemType = "attraction"
	ItemTypeInsurance  ItemType = "insurance"
	ItemTypeTransport  ItemType = "transport"
	ItemTypeStay       ItemType = "stay"
	ItemTypeOther      ItemType = "other"
)

// ItemStatus is the checkout state of a budget item.
//
//	planned --> paid --> confirmed
//	             \-----> failed --> paid (next checkout)
type ItemStatus string

const (
	ItemStatusPlanned   ItemStatus = "planned"
	ItemStatusPaid      ItemStatus = "paid"
	ItemStatusConfirmed ItemStatus = "confirmed"
	ItemStatusFailed    ItemStatus = "failed"
)

// IsValidItemType reports whether t is one of the known item types.
func IsValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeFlight, ItemTypeHotel, ItemTypeAttraction, ItemTypeInsurance,
		ItemTypeTransport, ItemTypeStay, ItemTypeOther:
		return true
	}
	return false
}

// IsValidItemSource reports whether s is one of the known provenance tags.
func IsValidItemSource(s ItemSource) bool {
	switch s {
	case ItemSourceSchedule, ItemSourceExtras, ItemSourceManual, ItemSourcePlanAuto:
		return true
	}
	return false
}

// Item is a spend commitment in a segment's cart.
type Item struct {
	ID               string     `json:"id" bson:"id"`
	SegmentID        string     `json:"segmentId" bson:"segment_id"`
	Source           ItemSource `json:"source" bson:"source"`
	Type             ItemType   `json:"type" bson:"type"`
	Title            string     `json:"title" bson:"title"`
	ProviderName     string     `json:"providerName,omitempty" bson:"provider_name,omitempty"`
	Amount           float64    `json:"amount" bson:"amount"`
	Currency         string     `json:"currency" bson:"currency"`
	Status           ItemStatus `json:"status" bson:"status"`
	ConfirmationCode string     `json:"confirmationCode,omitempty" bson:"confirmation_code,omitempty"`
	FailReason       string     `json:"failReason,omitempty" bson:"fail_reason,omitempty"`
	StartDate        string     `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate          string     `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Travelers        int        `json:"travelers,omitempty" bson:"travelers,omitempty"`
	Notes            string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" bson:"created_at"`
}

// IsCheckoutEligible reports whether a new checkout attempt may pick up the item.
func (i Item) IsCheckoutEligible() bool {
	return i.Status == ItemStatusPlanned || i.Status == ItemStatusFailed
}

// IsUserEditable reports whether manual edits are allowed in the current status.
func (i Item) IsUserEditable() bool {
	return i.Status == ItemStatusPlanned
}

// IsUserDeletable reports whether the item may be removed by the user.
// Confirmed items are settled and paid items have a supplier call in flight.
func (i Item) IsUserDeletable() bool {
	return i.Status != ItemStatusConfirmed && i.Status != ItemStatusPaid
}

// ItemPatch carries a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Type             *ItemType   `json:"type,omitempty"`
	Title            *string     `json:"title,omitempty"`
	ProviderName     *string     `json:"providerName,omitempty"`
	Amount           *float64    `json:"amount,omitempty"`
	Currency         *string     `json:"currency,omitempty"`
	Status           *ItemStatus `json:"status,omitempty"`
	ConfirmationCode *string     `json:"confirmationCode,omitempty"`
	FailReason       *string     `json:"failReason,omitempty"`
	StartDate        *string     `json:"start_date,omitempty"`
	EndDate          *string     `json:"end_date,omitempty"`
	Travelers        *int        `json:"travelers,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
}

// StatusPatch builds a patch that only moves the item to status.
func StatusPatch(status ItemStatus) ItemPatch {
	return ItemPatch{Status: &status}
}

// ConfirmedPatch builds the patch recorded for a successful fulfillment.
func ConfirmedPatch(code string) ItemPatch {
	status := ItemStatusConfirmed
	return ItemPatch{Status: &status, ConfirmationCode: &code}
}

// FailedPatch builds the patch recorded for a failed fulfillment.
func FailedPatch(reason string) ItemPatch {
	status := ItemStatusFailed
	return ItemPatch{Status: &status, FailReason: &reason}
}

// HasStatusChange reports whether the patch touches the status field.
func (p ItemPatch) HasStatusChange() bool {
	return p.Status != nil
}

// Apply merges the patch into the item. ID, SegmentID, Source and CreatedAt are immutable.
// A status change also resets the outcome fields so that confirmationCode and
// failReason are never set at the same time.
func (i *Item) Apply(p ItemPatch) {
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.ProviderName != nil {
		i.ProviderName = *p.ProviderName
	}
	if p.Amount != nil {
		i.Amount = *p.Amount
	}
	if p.Currency != nil {
		i.Currency = *p.Currency
	}
	if p.StartDate != nil {
		i.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		i.EndDate = *p.EndDate
	}
	if p.Travelers != nil {
		i.Travelers = *p.Travelers
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}

	if p.Status != nil {
		i.Status = *p.Status
		switch i.Status {
		case ItemStatusPaid, ItemStatusPlanned:
			i.ConfirmationCode = ""
			i.FailReason = ""
		case ItemStatusConfirmed:
			i.FailReason = ""
		case ItemStatusFailed:
			i.ConfirmationCode = ""
		}
	}
	if p.ConfirmationCode != nil {
		i.ConfirmationCode = *p.ConfirmationCode
	}
	if p.FailReason != nil {
		i.FailReason = *p.FailReason
	}
}

// NewItemID returns an id in the item_<unixMillis>_<suffix> form.
func NewItemID(now time.Time, rnd *rand.Rand) string {
	return fmt.Sprintf("item_%d_%s", now.UnixMilli(), randomSuffix(rnd, 9))
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(rnd *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		if rnd != nil {
			b[i] = suffixAlphabet[rnd.Intn(len(suffixAlphabet))]
		} else {
			b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
		}
	}
	return string(b)
}
