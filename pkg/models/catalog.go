package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Reference holds the fields every configuration entity shares.
type Reference struct {
	ID          int64  `json:"id"`
	Nom         string `json:"nom,omitempty"`
	Libelle     string `json:"libelle,omitempty"`
	Description string `json:"description,omitempty"`
	EstActif    bool   `json:"estActif"`
	EstArchive  bool   `json:"estArchive"`
}

// Label returns the display name whichever field the backend filled.
func (r Reference) Label() string {
	if r.Nom != "" {
		return r.Nom
	}
	return r.Libelle
}

// Ref exposes the embedded reference; it lets generic code reach shared flags.
func (r *Reference) Ref() *Reference {
	return r
}

type Service struct {
	Reference
	PrixBase decimal.Decimal `json:"prixBase"`
	Unite    string          `json:"unite,omitempty"`
	ParKilo  bool            `json:"parKilo,omitempty"`
}

type TypeLinge struct {
	Reference
}

type Temperature struct {
	Reference
	Degres int `json:"degres,omitempty"`
}

type OptionTraitement struct {
	Reference
	Prix decimal.Decimal `json:"prix"`
}

// DelaiLivraison is a delivery lead time offered to customers.
type DelaiLivraison struct {
	Reference
	NombreJours int             `json:"nombreJours"`
	Supplement  decimal.Decimal `json:"supplement"`
}

// CreneauCollecte is a collection window.
type CreneauCollecte struct {
	Reference
	HeureDebut types.Clock `json:"heureDebut"`
	HeureFin   types.Clock `json:"heureFin"`
}

// Label renders the window as shown to operators, e.g. "08h00 - 10h00".
func (c CreneauCollecte) Label() string {
	return types.WindowLabel(c.HeureDebut, c.HeureFin)
}

// TarifKilometrique prices delivery distance.
type TarifKilometrique struct {
	Reference
	PrixParKm   decimal.Decimal  `json:"prixParKm"`
	DistanceMin decimal.Decimal  `json:"distanceMin"`
	DistanceMax *decimal.Decimal `json:"distanceMax,omitempty"`
}

// Covers reports whether distance falls inside this tariff's band.
func (t TarifKilometrique) Covers(distance decimal.Decimal) bool {
	if distance.LessThan(t.DistanceMin) {
		return false
	}
	return t.DistanceMax == nil || distance.LessThanOrEqual(*t.DistanceMax)
}

// Fees returns distance times the per-km price, rounded up to the currency unit.
func (t TarifKilometrique) Fees(distance decimal.Decimal) decimal.Decimal {
	if distance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return distance.Mul(t.PrixParKm).Ceil()
}
