package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

type ServiceInput struct {
	Nom         string          `json:"nom" validate:"required,max=120"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	PrixBase    decimal.Decimal `json:"prixBase" validate:"gte=0"`
	Unite       string          `json:"unite,omitempty" validate:"omitempty,oneof=piece kg"`
	ParKilo     bool            `json:"parKilo"`
	EstActif    bool            `json:"estActif"`
}

func (i ServiceInput) Validate() validation.Violations {
	return validation.Struct(i)
}

// LabelInput covers the entities that only carry a name.
type LabelInput struct {
	Nom         string `json:"nom" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
	EstActif    bool   `json:"estActif"`
}

func (i LabelInput) Validate() validation.Violations {
	return validation.Struct(i)
}

type TemperatureInput struct {
	Nom      string `json:"nom" validate:"required,max=120"`
	Degres   int    `json:"degres" validate:"gte=0,lte=95"`
	EstActif bool   `json:"estActif"`
}

func (i TemperatureInput) Validate() validation.Violations {
	return validation.Struct(i)
}

type OptionTraitementInput struct {
	Nom         string          `json:"nom" validate:"required,max=120"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Prix        decimal.Decimal `json:"prix" validate:"gte=0"`
	EstActif    bool            `json:"estActif"`
}

func (i OptionTraitementInput) Validate() validation.Violations {
	return validation.Struct(i)
}

type DelaiLivraisonInput struct {
	Nom         string          `json:"nom" validate:"required,max=120"`
	NombreJours int             `json:"nombreJours" validate:"gte=0,lte=60"`
	Supplement  decimal.Decimal `json:"supplement" validate:"gte=0"`
	EstActif    bool            `json:"estActif"`
}

func (i DelaiLivraisonInput) Validate() validation.Violations {
	return validation.Struct(i)
}

type CreneauCollecteInput struct {
	Libelle    string      `json:"libelle" validate:"required,max=120"`
	HeureDebut types.Clock `json:"heureDebut"`
	HeureFin   types.Clock `json:"heureFin"`
	EstActif   bool        `json:"estActif"`
}

func (i CreneauCollecteInput) Validate() validation.Violations {
	v := validation.Struct(i)
	if !i.HeureDebut.Before(i.HeureFin) {
		v.Add("heureFin", "L'heure de fin doit suivre l'heure de début")
	}
	return v
}

type TarifKilometriqueInput struct {
	Nom         string           `json:"nom" validate:"required,max=120"`
	PrixParKm   decimal.Decimal  `json:"prixParKm" validate:"gt=0"`
	DistanceMin decimal.Decimal  `json:"distanceMin" validate:"gte=0"`
	DistanceMax *decimal.Decimal `json:"distanceMax,omitempty"`
	EstActif    bool             `json:"estActif"`
}

func (i TarifKilometriqueInput) Validate() validation.Violations {
	v := validation.Struct(i)
	if i.DistanceMax != nil && !i.DistanceMax.GreaterThan(i.DistanceMin) {
		v.Add("distanceMax", "La distance maximale doit dépasser la distance minimale")
	}
	return v
}
