package enums

import "fmt"

// PaymentMethod is how the customer settled (part of) an order.
type PaymentMethod string

const (
	PaymentMethodEspeces     PaymentMethod = "especes"
	PaymentMethodCarte       PaymentMethod = "carte"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodVirement    PaymentMethod = "virement"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodEspeces,
	PaymentMethodCarte,
	PaymentMethodMobileMoney,
	PaymentMethodVirement,
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
