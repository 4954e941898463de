package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Tarif is one version of the price of a service or treatment option. New prices create a new
// version; existing versions are never edited.
type Tarif struct {
	ID                 int64           `json:"id"`
	ServiceID          *int64          `json:"serviceId,omitempty"`
	OptionTraitementID *int64          `json:"optionTraitementId,omitempty"`
	TypeLingeID        *int64          `json:"typeLingeId,omitempty"`
	PrixBase           decimal.Decimal `json:"prixBase"`
	PrixSupplementaire decimal.Decimal `json:"prixSupplementaire"`
	DateDebutValidite  types.Date      `json:"dateDebutValidite"`
	DateFinValidite    *types.Date     `json:"dateFinValidite,omitempty"`
	Version            int             `json:"version"`
	Motif              string          `json:"motif,omitempty"`
	Timestamps
}

// ValidOn reports whether the version applies on day.
func (t Tarif) ValidOn(day types.Date) bool {
	if day.Before(t.DateDebutValidite) {
		return false
	}
	return t.DateFinValidite == nil || !t.DateFinValidite.Before(day)
}
