package budget

import (
	"strconv"
	"strings"
)

// FingerprintInput holds the identifying fields of a prospective cart item.
// Amount is a pointer so that "not provided" can be told apart from a value.
type FingerprintInput struct {
	SegmentID string
	Type      ItemType
	Provider  string
	Title     string
	Amount    *float64
}

// FingerprintOf extracts the identifying fields of an existing item.
func FingerprintOf(item Item) FingerprintInput {
	amount := item.Amount
	return FingerprintInput{
		SegmentID: item.SegmentID,
		Type:      item.Type,
		Provider:  item.ProviderName,
		Title:     item.Title,
		Amount:    &amount,
	}
}

// Fingerprint returns the dedup key segment_type_provider_title_amount.
// Provider and title are trimmed and lower-cased; an empty type reads as "other".
func Fingerprint(in FingerprintInput) string {
	itemType := in.Type
	if itemType == "" {
		itemType = ItemTypeOther
	}
	amount := ""
	if in.Amount != nil {
		amount = formatAmount(*in.Amount)
	}

	return strings.Join([]string{
		in.SegmentID,
		string(itemType),
		normalize(in.Provider),
		normalize(in.Title),
		amount,
	}, "_")
}

// IsDuplicateItem reports whether any existing item shares the candidate's fingerprint.
// Candidates without a segment, a title or a non-zero amount are never duplicates.
func IsDuplicateItem(candidate FingerprintInput, existing []Item) bool {
	if candidate.SegmentID == "" || candidate.Title == "" || candidate.Amount == nil || *candidate.Amount == 0 {
		return false
	}

	key := Fingerprint(candidate)
	for _, item := range existing {
		if Fingerprint(FingerprintOf(item)) == key {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// formatAmount renders the shortest decimal form, so 350 and 350.0 agree.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
