package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// Promotion is a discount code.
type Promotion struct {
	ID                         int64               `json:"id"`
	Code                       string              `json:"code"`
	Description                string              `json:"description,omitempty"`
	TypeReduction              enums.ReductionType `json:"typeReduction"`
	ValeurReduction            decimal.Decimal     `json:"valeurReduction"`
	MontantMinimum             *decimal.Decimal    `json:"montantMinimum,omitempty"`
	DateDebut                  types.Date          `json:"dateDebut"`
	DateFin                    types.Date          `json:"dateFin"`
	UtilisationsMax            *int                `json:"utilisationsMax,omitempty"`
	UtilisationsActuelles      int                 `json:"utilisationsActuelles"`
	EstCumulable               bool                `json:"estCumulable"`
	PremiereCommandeUniquement bool                `json:"premiereCommandeUniquement"`
	EstActif                   bool                `json:"estActif"`
	EstArchive                 bool                `json:"estArchive"`
}

// Discount returns the reduction applied to amount, never more than amount itself.
func (p Promotion) Discount(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch p.TypeReduction {
	case enums.ReductionTypePourcentage:
		discount = amount.Mul(p.ValeurReduction).Div(decimal.NewFromInt(100)).Round(2)
	case enums.ReductionTypeMontantFixe:
		discount = p.ValeurReduction
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(amount) {
		return amount
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// UsableOn reports whether the code can be applied on day for a customer's order.
func (p Promotion) UsableOn(day types.Date, firstOrder bool) bool {
	if !p.EstActif || p.EstArchive {
		return false
	}
	if day.Before(p.DateDebut) || p.DateFin.Before(day) {
		return false
	}
	if p.UtilisationsMax != nil && p.UtilisationsActuelles >= *p.UtilisationsMax {
		return false
	}
	if p.PremiereCommandeUniquement && !firstOrder {
		return false
	}
	return true
}
