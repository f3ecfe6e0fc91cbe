package budget

// PaymentMethodType is the funding instrument kind.
type PaymentMethodType string

const (
	PaymentMethodCard      PaymentMethodType = "card"
	PaymentMethodApplePay  PaymentMethodType = "apple_pay"
	PaymentMethodGooglePay PaymentMethodType = "google_pay"
)

// IsValidPaymentMethodType reports whether t is a supported instrument.
func IsValidPaymentMethodType(t PaymentMethodType) bool {
	switch t {
	case PaymentMethodCard, PaymentMethodApplePay, PaymentMethodGooglePay:
		return true
	}
	return false
}

// PaymentMethod is a selectable funding instrument.
type PaymentMethod struct {
	ID    string            `json:"id" bson:"id"`
	Type  PaymentMethodType `json:"type" bson:"type"`
	Label string            `json:"label" bson:"label"`
	Last4 string            `json:"last4,omitempty" bson:"last4,omitempty"`
	Brand string            `json:"brand,omitempty" bson:"brand,omitempty"`
}

// DefaultPaymentMethods seeds a ledger that has nothing persisted yet.
// The first entry is selected.
func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "pm_1", Type: PaymentMethodCard, Label: "Visa •••• 4242", Last4: "4242", Brand: "visa"},
		{ID: "pm_2", Type: PaymentMethodApplePay, Label: "Apple Pay"},
	}
}
