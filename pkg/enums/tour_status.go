package enums

import "fmt"

// TourStatus is the lifecycle of a delivery tour.
type TourStatus string

const (
	TourStatusPlanifiee TourStatus = "planifiee"
	TourStatusEnCours   TourStatus = "en_cours"
	TourStatusTerminee  TourStatus = "terminee"
	TourStatusAnnulee   TourStatus = "annulee"
)

var validTourStatuses = []TourStatus{
	TourStatusPlanifiee,
	TourStatusEnCours,
	TourStatusTerminee,
	TourStatusAnnulee,
}

// tourTransitions lists the only moves a tour may make. Terminal states have none.
var tourTransitions = map[TourStatus][]TourStatus{
	TourStatusPlanifiee: {TourStatusEnCours, TourStatusAnnulee},
	TourStatusEnCours:   {TourStatusTerminee, TourStatusAnnulee},
}

func (s TourStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TourStatus.
func (s TourStatus) IsValid() bool {
	for _, candidate := range validTourStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TourStatus) IsTerminal() bool {
	return s == TourStatusTerminee || s == TourStatusAnnulee
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s TourStatus) CanTransitionTo(next TourStatus) bool {
	for _, candidate := range tourTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseTourStatus converts raw input into a TourStatus.
func ParseTourStatus(value string) (TourStatus, error) {
	for _, candidate := range validTourStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tour status %q", value)
}
