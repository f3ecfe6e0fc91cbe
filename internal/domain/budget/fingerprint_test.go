package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func amountPtr(v float64) *float64 { return &v }

func TestFingerprint(t *testing.T) {
	testCases := []struct {
		name     string
		input    FingerprintInput
		expected string
	}{
		{
			name:     "NormalizesProviderAndTitle",
			input:    FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "  SkyAir ", Title: " Flight TO Lisbon", Amount: amountPtr(350)},
			expected: "trip_1_flight_skyair_flight to lisbon_350",
		},
		{
			name:     "MissingTypeIsOther",
			input:    FingerprintInput{SegmentID: "trip_1", Title: "Snacks", Amount: amountPtr(12.5)},
			expected: "trip_1_other__snacks_12.5",
		},
		{
			name:     "WholeFloatsHaveNoDecimals",
			input:    FingerprintInput{SegmentID: "s", Type: ItemTypeStay, Provider: "Inn", Title: "Room", Amount: amountPtr(120.0)},
			expected: "s_stay_inn_room_120",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Fingerprint(tc.input))
		})
	}
}

func TestIsDuplicateItem(t *testing.T) {
	existing := []Item{
		{SegmentID: "trip_1", Type: ItemTypeFlight, ProviderName: "SkyAir", Title: "Flight", Amount: 350, Status: ItemStatusPlanned},
		{SegmentID: "trip_1", Type: ItemTypeStay, ProviderName: "Inn", Title: "Room", Amount: 90, Status: ItemStatusConfirmed},
	}

	testCases := []struct {
		name      string
		candidate FingerprintInput
		expected  bool
	}{
		{"ExactMatch", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(350)}, true},
		{"CaseAndWhitespaceInsensitive", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: " skyair", Title: "FLIGHT ", Amount: amountPtr(350)}, true},
		{"DifferentAmount", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(351)}, false},
		{"DifferentSegment", FingerprintInput{SegmentID: "trip_2", Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(350)}, false},
		{"DifferentType", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeTransport, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(350)}, false},
		{"MissingSegment", FingerprintInput{Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(350)}, false},
		{"MissingTitle", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "SkyAir", Amount: amountPtr(350)}, false},
		{"MissingAmount", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight"}, false},
		{"ZeroAmountNeverCompared", FingerprintInput{SegmentID: "trip_1", Type: ItemTypeFlight, Provider: "SkyAir", Title: "Flight", Amount: amountPtr(0)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsDuplicateItem(tc.candidate, existing))
		})
	}
}
