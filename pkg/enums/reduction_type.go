package enums

import "fmt"

// ReductionType is how a promotion discounts an order.
type ReductionType string

const (
	ReductionTypePourcentage ReductionType = "pourcentage"
	ReductionTypeMontantFixe ReductionType = "montant_fixe"
)

var validReductionTypes = []ReductionType{
	ReductionTypePourcentage,
	ReductionTypeMontantFixe,
}

func (r ReductionType) String() string {
	return string(r)
}

func (r ReductionType) IsValid() bool {
	for _, candidate := range validReductionTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseReductionType(value string) (ReductionType, error) {
	for _, candidate := range validReductionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reduction type %q", value)
}
