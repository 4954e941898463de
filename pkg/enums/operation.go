package enums

import "fmt"

// OperationType distinguishes collection from delivery within a tour.
type OperationType string

const (
	OperationTypeCollecte  OperationType = "collecte"
	OperationTypeLivraison OperationType = "livraison"
)

var validOperationTypes = []OperationType{
	OperationTypeCollecte,
	OperationTypeLivraison,
}

func (t OperationType) String() string {
	return string(t)
}

func (t OperationType) IsValid() bool {
	for _, candidate := range validOperationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseOperationType(value string) (OperationType, error) {
	for _, candidate := range validOperationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation type %q", value)
}

// OperationStatus tracks a single logistics operation.
type OperationStatus string

const (
	OperationStatusPlanifiee OperationStatus = "planifiee"
	OperationStatusEnCours   OperationStatus = "en_cours"
	OperationStatusEffectuee OperationStatus = "effectuee"
	OperationStatusEchouee   OperationStatus = "echouee"
	OperationStatusAnnulee   OperationStatus = "annulee"
)

var validOperationStatuses = []OperationStatus{
	OperationStatusPlanifiee,
	OperationStatusEnCours,
	OperationStatusEffectuee,
	OperationStatusEchouee,
	OperationStatusAnnulee,
}

func (s OperationStatus) String() string {
	return string(s)
}

func (s OperationStatus) IsValid() bool {
	for _, candidate := range validOperationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// AcceptsProofs reports whether proof files may be attached in this status.
func (s OperationStatus) AcceptsProofs() bool {
	return s == OperationStatusEffectuee
}

func ParseOperationStatus(value string) (OperationStatus, error) {
	for _, candidate := range validOperationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation status %q", value)
}
