package enums

import "fmt"

// PaymentMethod is how the customer pays at the cashier. Later defers
// payment until the table is closed.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodQRIS     PaymentMethod = "qris"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodLater    PaymentMethod = "later"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodQRIS,
	PaymentMethodCard,
	PaymentMethodTransfer,
	PaymentMethodLater,
}

func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
