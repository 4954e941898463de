package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/internal/wizard"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

// DraftKind names order wizard drafts in the draft store.
const DraftKind = "orders"

const (
	StepClient        = "client"
	StepCollecte      = "collecte"
	StepArticles      = "articles"
	StepLivraison     = "livraison"
	StepRecapitulatif = "recapitulatif"
)

// Steps is the order wizard sequence.
var Steps = []string{StepClient, StepCollecte, StepArticles, StepLivraison, StepRecapitulatif}

// PromotionLookup resolves a promotion code.
type PromotionLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Promotion, error)
}

// Form is the state edited by the order wizard. Reference entities are stored whole so the
// derived amounts can be computed without another round trip.
type Form struct {
	ClientID            int64                      `json:"clientId"`
	Client              *models.Client             `json:"client,omitempty"`
	AdresseCollecte     string                     `json:"adresseCollecte"`
	DistanceCollecte    decimal.Decimal            `json:"distanceCollecte"`
	DateCollecte        types.Date                 `json:"dateCollecte"`
	CreneauCollecte     *models.CreneauCollecte    `json:"creneauCollecte,omitempty"`
	Lignes              []LigneInput               `json:"lignes"`
	AdresseLivraison    string                     `json:"adresseLivraison"`
	DistanceLivraison   decimal.Decimal            `json:"distanceLivraison"`
	DelaiLivraison      *models.DelaiLivraison     `json:"delaiLivraison,omitempty"`
	Promotion           *models.Promotion          `json:"promotion,omitempty"`
	Notes               string                     `json:"notes,omitempty"`
	TarifsKilometriques []models.TarifKilometrique `json:"tarifsKilometriques,omitempty"`
}

// Assign implements wizard.Form.
func (f *Form) Assign(field string, value any) error {
	switch field {
	case "clientId":
		return wizard.Assign(&f.ClientID, value)
	case "client":
		var client models.Client
		if err := wizard.Assign(&client, value); err != nil {
			return err
		}
		f.Client = &client
		f.ClientID = client.ID
		if f.AdresseCollecte == "" {
			f.AdresseCollecte = client.Adresse
		}
		if f.AdresseLivraison == "" {
			f.AdresseLivraison = client.Adresse
		}
		return nil
	case "adresseCollecte":
		return wizard.Assign(&f.AdresseCollecte, value)
	case "distanceCollecte":
		return wizard.Assign(&f.DistanceCollecte, value)
	case "dateCollecte":
		return wizard.Assign(&f.DateCollecte, value)
	case "creneauCollecte":
		return wizard.Assign(&f.CreneauCollecte, value)
	case "lignes":
		return wizard.Assign(&f.Lignes, value)
	case "adresseLivraison":
		return wizard.Assign(&f.AdresseLivraison, value)
	case "distanceLivraison":
		return wizard.Assign(&f.DistanceLivraison, value)
	case "delaiLivraison":
		return wizard.Assign(&f.DelaiLivraison, value)
	case "promotion":
		return wizard.Assign(&f.Promotion, value)
	case "notes":
		return wizard.Assign(&f.Notes, value)
	case "tarifsKilometriques":
		return wizard.Assign(&f.TarifsKilometriques, value)
	}
	return fmt.Errorf("unknown order field %q", field)
}

type articlesStep struct {
	Lignes []LigneInput `json:"lignes" validate:"min=1,dive"`
}

// ValidateStep implements wizard.Form.
func (f *Form) ValidateStep(step string) validation.Violations {
	v := validation.Violations{}
	switch step {
	case StepClient:
		if f.ClientID <= 0 {
			v.Add("clientId", "Sélectionnez un client")
		}
	case StepCollecte:
		if strings.TrimSpace(f.AdresseCollecte) == "" {
			v.Add("adresseCollecte", "Ce champ est requis")
		}
		if f.DateCollecte.IsZero() {
			v.Add("dateCollecte", "Ce champ est requis")
		}
		if f.CreneauCollecte == nil {
			v.Add("creneauCollecte", "Sélectionnez un créneau de collecte")
		}
		if f.DistanceCollecte.IsNegative() {
			v.Add("distanceCollecte", "Doit être supérieur ou égal à 0")
		}
	case StepArticles:
		v.Merge(validation.Struct(articlesStep{Lignes: f.Lignes}))
	case StepLivraison:
		if strings.TrimSpace(f.AdresseLivraison) == "" {
			v.Add("adresseLivraison", "Ce champ est requis")
		}
		if f.DelaiLivraison == nil {
			v.Add("delaiLivraison", "Sélectionnez un délai de livraison")
		}
		if f.DistanceLivraison.IsNegative() {
			v.Add("distanceLivraison", "Doit être supérieur ou égal à 0")
		} else if len(f.TarifsKilometriques) > 0 && f.DistanceLivraison.IsPositive() && f.tarifFor(f.DistanceLivraison) == nil {
			v.Add("distanceLivraison", "Aucun tarif kilométrique ne couvre cette distance")
		}
	case StepRecapitulatif:
		if f.Promotion != nil {
			if msg := f.promotionProblem(); msg != "" {
				v.Add("codePromo", msg)
			}
		}
	}
	return v
}

// Summary holds the values the wizard derives from the form.
type Summary struct {
	FenetreCollecte     string            `json:"fenetreCollecte"`
	DateLivraisonPrevue types.Date        `json:"dateLivraisonPrevue"`
	SousTotauxLignes    []decimal.Decimal `json:"sousTotauxLignes"`
	MontantSousTotal    decimal.Decimal   `json:"montantSousTotal"`
	FraisKilometriques  decimal.Decimal   `json:"fraisKilometriques"`
	SupplementDelai     decimal.Decimal   `json:"supplementDelai"`
	FraisLivraison      decimal.Decimal   `json:"fraisLivraison"`
	MontantRemise       decimal.Decimal   `json:"montantRemise"`
	MontantTotal        decimal.Decimal   `json:"montantTotal"`
}

// Summary computes the derived amounts and labels.
func (f *Form) Summary() Summary {
	var s Summary
	if f.CreneauCollecte != nil {
		s.FenetreCollecte = f.CreneauCollecte.Label()
	}
	if f.DelaiLivraison != nil && !f.DateCollecte.IsZero() {
		s.DateLivraisonPrevue = f.DateCollecte.AddDays(f.DelaiLivraison.NombreJours)
	}
	s.SousTotauxLignes = make([]decimal.Decimal, 0, len(f.Lignes))
	for _, line := range f.Lignes {
		sub := line.SousTotal()
		s.SousTotauxLignes = append(s.SousTotauxLignes, sub)
		s.MontantSousTotal = s.MontantSousTotal.Add(sub)
	}
	s.FraisKilometriques = f.distanceFees(f.DistanceCollecte).Add(f.distanceFees(f.DistanceLivraison))
	if f.DelaiLivraison != nil {
		s.SupplementDelai = f.DelaiLivraison.Supplement
	}
	s.FraisLivraison = s.FraisKilometriques.Add(s.SupplementDelai)
	if f.Promotion != nil && f.promotionProblem() == "" {
		s.MontantRemise = f.Promotion.Discount(s.MontantSousTotal)
	}
	s.MontantTotal = s.MontantSousTotal.Add(s.FraisLivraison).Sub(s.MontantRemise)
	return s
}

// CreateInput builds the order payload with the derived amounts.
func (f *Form) CreateInput() CreateInput {
	s := f.Summary()
	input := CreateInput{
		ClientID:            f.ClientID,
		AdresseCollecte:     strings.TrimSpace(f.AdresseCollecte),
		DistanceCollecte:    f.DistanceCollecte,
		DateCollecte:        f.DateCollecte,
		AdresseLivraison:    strings.TrimSpace(f.AdresseLivraison),
		DistanceLivraison:   f.DistanceLivraison,
		DateLivraisonPrevue: s.DateLivraisonPrevue,
		Notes:               f.Notes,
		Lignes:              f.Lignes,
		MontantSousTotal:    s.MontantSousTotal,
		FraisLivraison:      s.FraisLivraison,
		MontantRemise:       s.MontantRemise,
		MontantTotal:        s.MontantTotal,
	}
	if f.CreneauCollecte != nil {
		input.CreneauCollecteID = f.CreneauCollecte.ID
	}
	if f.DelaiLivraison != nil {
		input.DelaiLivraisonID = f.DelaiLivraison.ID
	}
	if f.Promotion != nil && s.MontantRemise.IsPositive() {
		input.CodePromo = f.Promotion.Code
	}
	return input
}

func (f *Form) tarifFor(distance decimal.Decimal) *models.TarifKilometrique {
	for i := range f.TarifsKilometriques {
		tarif := f.TarifsKilometriques[i]
		if tarif.EstActif && !tarif.EstArchive && tarif.Covers(distance) {
			return &f.TarifsKilometriques[i]
		}
	}
	return nil
}

func (f *Form) distanceFees(distance decimal.Decimal) decimal.Decimal {
	tarif := f.tarifFor(distance)
	if tarif == nil {
		return decimal.Zero
	}
	return tarif.Fees(distance)
}

func (f *Form) promotionProblem() string {
	promo := f.Promotion
	firstOrder := f.Client == nil || f.Client.NombreCommandes == 0
	day := f.DateCollecte
	if day.IsZero() {
		day = types.NewDate(promo.DateDebut.Time)
	}
	if !promo.UsableOn(day, firstOrder) {
		return "Ce code promo n'est pas applicable à cette commande"
	}
	if promo.MontantMinimum != nil {
		var sub decimal.Decimal
		for _, line := range f.Lignes {
			sub = sub.Add(line.SousTotal())
		}
		if sub.LessThan(*promo.MontantMinimum) {
			return fmt.Sprintf("Montant minimum de %s requis", promo.MontantMinimum.String())
		}
	}
	return ""
}

// Wizard is the five-step order creation flow.
type Wizard struct {
	*wizard.Machine[*Form]
}

// NewWizard starts an order wizard. tarifs are the active per-km bands used to price distances.
func NewWizard(tarifs []models.TarifKilometrique) *Wizard {
	return &Wizard{Machine: wizard.New(Steps, &Form{TarifsKilometriques: tarifs})}
}

// RestoreWizard rebuilds a wizard from a draft.
func RestoreWizard(state wizard.State[*Form]) *Wizard {
	if state.Form == nil {
		state.Form = &Form{}
	}
	return &Wizard{Machine: wizard.Restore(Steps, state)}
}

// NewForm returns an empty form for draft decoding.
func NewForm() *Form {
	return &Form{}
}

func (w *Wizard) Summary() Summary {
	return w.Form().Summary()
}

// ApplyPromotion resolves code and attaches the promotion. An empty code removes it.
func (w *Wizard) ApplyPromotion(ctx context.Context, lookup PromotionLookup, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return w.Set("promotion", nil)
	}
	promo, err := lookup.GetByCode(ctx, code)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) || apiclient.StatusOf(err) == 404 {
			return validation.Violations{"codePromo": "Code promo inconnu"}.Err()
		}
		return err
	}
	if err := w.Set("promotion", promo); err != nil {
		return err
	}
	w.ClearErrors("codePromo")
	return nil
}

// Submit creates the order from the final step.
func (w *Wizard) Submit(ctx context.Context, svc Service) (*models.Commande, error) {
	var created *models.Commande
	err := w.Machine.Submit(ctx, func(ctx context.Context, form *Form) error {
		order, err := svc.Create(ctx, form.CreateInput())
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
