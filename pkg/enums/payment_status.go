package enums

import "fmt"

// PaymentStatus tracks a payment recorded against an order.
type PaymentStatus string

const (
	PaymentStatusEnAttente PaymentStatus = "en_attente"
	PaymentStatusValide    PaymentStatus = "valide"
	PaymentStatusEchoue    PaymentStatus = "echoue"
	PaymentStatusAnnule    PaymentStatus = "annule"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusEnAttente,
	PaymentStatusValide,
	PaymentStatusEchoue,
	PaymentStatusAnnule,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
