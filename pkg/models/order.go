package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// PaidTolerance is the remaining amount under which an order counts as fully paid.
var PaidTolerance = decimal.RequireFromString("0.01")

// Statut is an order status reference entity.
type Statut struct {
	ID      int64                 `json:"id"`
	Code    enums.OrderStatusCode `json:"code"`
	Libelle string                `json:"libelle"`
	Ordre   int                   `json:"ordre"`
	Couleur string                `json:"couleur,omitempty"`
}

// StatutPivot is the join record between an order and a status.
type StatutPivot struct {
	CreatedAt   time.Time `json:"createdAt"`
	Commentaire string    `json:"commentaire,omitempty"`
}

// StatutCommande is one entry of an order's status history.
type StatutCommande struct {
	Statut
	Pivot StatutPivot `json:"pivot"`
}

// OptionLigne is a treatment option applied to a line.
type OptionLigne struct {
	OptionTraitementID int64           `json:"optionTraitementId"`
	Nom                string          `json:"nom,omitempty"`
	Prix               decimal.Decimal `json:"prix"`
}

// LigneCommande is a priced line of an order.
type LigneCommande struct {
	ID            int64           `json:"id,omitempty"`
	ServiceID     int64           `json:"serviceId"`
	TypeLingeID   *int64          `json:"typeLingeId,omitempty"`
	TemperatureID *int64          `json:"temperatureId,omitempty"`
	Service       *Service        `json:"service,omitempty"`
	Quantite      int             `json:"quantite"`
	PrixUnitaire  decimal.Decimal `json:"prixUnitaire"`
	Options       []OptionLigne   `json:"options,omitempty"`
	SousTotal     decimal.Decimal `json:"sousTotal"`
}

// Commande is a customer order.
type Commande struct {
	ID                  int64            `json:"id"`
	Numero              string           `json:"numero"`
	ClientID            int64            `json:"clientId"`
	Client              *Client          `json:"client,omitempty"`
	MontantSousTotal    decimal.Decimal  `json:"montantSousTotal"`
	FraisLivraison      decimal.Decimal  `json:"fraisLivraison"`
	MontantRemise       decimal.Decimal  `json:"montantRemise"`
	MontantTotal        decimal.Decimal  `json:"montantTotal"`
	MontantPaye         decimal.Decimal  `json:"montantPaye"`
	MontantRestant      decimal.Decimal  `json:"montantRestant"`
	EstPayeCompletement bool             `json:"estPayeCompletement"`
	CodePromo           string           `json:"codePromo,omitempty"`
	Statuts             []StatutCommande `json:"statuts,omitempty"`
	Lignes              []LigneCommande  `json:"lignes,omitempty"`
	Paiements           []Paiement       `json:"paiements,omitempty"`
	AdresseCollecte     string           `json:"adresseCollecte"`
	AdresseLivraison    string           `json:"adresseLivraison"`
	DistanceCollecte    decimal.Decimal  `json:"distanceCollecte"`
	DistanceLivraison   decimal.Decimal  `json:"distanceLivraison"`
	DateCollecte        types.Date       `json:"dateCollecte"`
	CreneauCollecteID   *int64           `json:"creneauCollecteId,omitempty"`
	CreneauCollecte     *CreneauCollecte `json:"creneauCollecte,omitempty"`
	DelaiLivraisonID    *int64           `json:"delaiLivraisonId,omitempty"`
	DelaiLivraison      *DelaiLivraison  `json:"delaiLivraison,omitempty"`
	DateLivraisonPrevue types.Date       `json:"dateLivraisonPrevue"`
	Notes               string           `json:"notes,omitempty"`
	EstArchive          bool             `json:"estArchive"`
	Timestamps
}

// Reconcile recomputes the remaining amount and the fully-paid flag from total and paid amounts.
func (c *Commande) Reconcile() {
	c.MontantRestant = c.MontantTotal.Sub(c.MontantPaye)
	c.EstPayeCompletement = c.MontantRestant.Abs().LessThan(PaidTolerance)
}

// IsConsistent reports whether the stored amounts already satisfy the payment invariant.
func (c Commande) IsConsistent() bool {
	restant := c.MontantTotal.Sub(c.MontantPaye)
	return restant.Equal(c.MontantRestant) &&
		c.EstPayeCompletement == restant.Abs().LessThan(PaidTolerance)
}

// CurrentStatus returns the most recent status history entry, or nil when there is none.
func (c Commande) CurrentStatus() *StatutCommande {
	if len(c.Statuts) == 0 {
		return nil
	}
	latest := 0
	for i := 1; i < len(c.Statuts); i++ {
		if !c.Statuts[i].Pivot.CreatedAt.Before(c.Statuts[latest].Pivot.CreatedAt) {
			latest = i
		}
	}
	return &c.Statuts[latest]
}
