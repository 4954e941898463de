package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/internal/wizard"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func kmTarifs() []models.TarifKilometrique {
	ten := dec("10")
	return []models.TarifKilometrique{
		{Reference: models.Reference{ID: 1, EstActif: true}, PrixParKm: dec("150"), DistanceMin: dec("0"), DistanceMax: &ten},
		{Reference: models.Reference{ID: 2, EstActif: true}, PrixParKm: dec("120"), DistanceMin: dec("10")},
	}
}

type stubPromotions map[string]models.Promotion

func (s stubPromotions) GetByCode(_ context.Context, code string) (*models.Promotion, error) {
	promo, ok := s[code]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown code")
	}
	return &promo, nil
}

func mustDate(t *testing.T, value string) types.Date {
	t.Helper()
	d, err := types.ParseDate(value)
	require.NoError(t, err)
	return d
}

// fillWizard walks the wizard to the summary step with a known basket.
func fillWizard(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.Set("client", models.Client{ID: 7, Nom: "Diallo", Prenom: "Awa", Adresse: "Rue 10, Dakar"}))
	require.True(t, w.Next(), "client step: %v", w.Errors())

	require.NoError(t, w.Set("dateCollecte", "2024-05-10"))
	require.NoError(t, w.Set("distanceCollecte", "2.5"))
	require.NoError(t, w.Set("creneauCollecte", models.CreneauCollecte{
		Reference:  models.Reference{ID: 3, Libelle: "Matin", EstActif: true},
		HeureDebut: types.Clock{Hour: 8},
		HeureFin:   types.Clock{Hour: 10},
	}))
	require.True(t, w.Next(), "collecte step: %v", w.Errors())

	require.NoError(t, w.Set("lignes", []LigneInput{
		{ServiceID: 1, Quantite: 3, PrixUnitaire: dec("1500"), Options: []models.OptionLigne{{OptionTraitementID: 2, Prix: dec("500")}}},
		{ServiceID: 2, Quantite: 1, PrixUnitaire: dec("2000")},
	}))
	require.True(t, w.Next(), "articles step: %v", w.Errors())

	require.NoError(t, w.Set("distanceLivraison", 12.3))
	require.NoError(t, w.Set("delaiLivraison", models.DelaiLivraison{
		Reference:   models.Reference{ID: 4, Libelle: "Express"},
		NombreJours: 3,
		Supplement:  dec("1000"),
	}))
	require.True(t, w.Next(), "livraison step: %v", w.Errors())
	require.Equal(t, StepRecapitulatif, w.Step())
}

func summerPromotions(t *testing.T) stubPromotions {
	return stubPromotions{"ETE24": {
		ID: 9, Code: "ETE24", TypeReduction: enums.ReductionTypePourcentage, ValeurReduction: dec("10"),
		DateDebut: mustDate(t, "2024-05-01"), DateFin: mustDate(t, "2024-05-31"), EstActif: true,
	}}
}

func TestWizardDerivedValues(t *testing.T) {
	w := NewWizard(kmTarifs())
	fillWizard(t, w)
	require.NoError(t, w.ApplyPromotion(context.Background(), summerPromotions(t), "ete24"))

	s := w.Summary()
	assert.Equal(t, "08h00 - 10h00", s.FenetreCollecte)
	assert.Equal(t, "2024-05-13", s.DateLivraisonPrevue.String())
	require.Len(t, s.SousTotauxLignes, 2)
	assert.True(t, s.SousTotauxLignes[0].Equal(dec("5000")))
	assert.True(t, s.MontantSousTotal.Equal(dec("7000")))
	// 2.5 km at 150 plus 12.3 km at 120, rounded up per leg.
	assert.True(t, s.FraisKilometriques.Equal(dec("1851")), s.FraisKilometriques.String())
	assert.True(t, s.FraisLivraison.Equal(dec("2851")))
	assert.True(t, s.MontantRemise.Equal(dec("700")))
	assert.True(t, s.MontantTotal.Equal(dec("9151")), s.MontantTotal.String())
}

func TestWizardBlocksInvalidSteps(t *testing.T) {
	w := NewWizard(kmTarifs())
	assert.False(t, w.Next())
	assert.True(t, w.Errors().Has("clientId"))

	require.NoError(t, w.Set("clientId", 7))
	require.True(t, w.Next())
	assert.False(t, w.Next())
	errs := w.Errors()
	assert.True(t, errs.Has("adresseCollecte"))
	assert.True(t, errs.Has("dateCollecte"))
	assert.True(t, errs.Has("creneauCollecte"))
}

func TestWizardLineErrorsAreIndexed(t *testing.T) {
	form := &Form{Lignes: []LigneInput{{ServiceID: 1, Quantite: 1}, {ServiceID: 0, Quantite: 0}}}
	v := form.ValidateStep(StepArticles)
	assert.True(t, v.Has("lignes[1].serviceId"))
	assert.True(t, v.Has("lignes[1].quantite"))
	assert.False(t, v.Has("lignes[0].quantite"))
}

func TestWizardRejectsUncoveredDistance(t *testing.T) {
	ten := dec("10")
	form := &Form{
		AdresseLivraison:    "Rue 1",
		DelaiLivraison:      &models.DelaiLivraison{NombreJours: 1},
		DistanceLivraison:   dec("25"),
		TarifsKilometriques: []models.TarifKilometrique{{Reference: models.Reference{EstActif: true}, PrixParKm: dec("100"), DistanceMax: &ten}},
	}
	assert.True(t, form.ValidateStep(StepLivraison).Has("distanceLivraison"))
}

func TestApplyUnknownPromotion(t *testing.T) {
	w := NewWizard(nil)
	err := w.ApplyPromotion(context.Background(), stubPromotions{}, "NOPE")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Nil(t, w.Form().Promotion)
}

func TestPromotionOutsideWindowIsNotDiscounted(t *testing.T) {
	w := NewWizard(kmTarifs())
	fillWizard(t, w)
	promos := stubPromotions{"HIVER": {
		Code: "HIVER", TypeReduction: enums.ReductionTypeMontantFixe, ValeurReduction: dec("500"),
		DateDebut: mustDate(t, "2024-12-01"), DateFin: mustDate(t, "2024-12-31"), EstActif: true,
	}}
	require.NoError(t, w.ApplyPromotion(context.Background(), promos, "HIVER"))

	assert.True(t, w.Summary().MontantRemise.IsZero())
	assert.True(t, w.Form().ValidateStep(StepRecapitulatif).Has("codePromo"))
	_, err := w.Submit(context.Background(), nil)
	require.Error(t, err)
}

func TestSubmittedOrderIsConsistentWithWizardTotal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	w := NewWizard(kmTarifs())
	fillWizard(t, w)
	require.NoError(t, w.ApplyPromotion(ctx, summerPromotions(t), "ETE24"))
	expected := w.Summary().MontantTotal

	created, err := w.Submit(ctx, svc)
	require.NoError(t, err)
	assert.True(t, w.Submitted())

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.MontantTotal.Equal(expected))
	assert.True(t, fetched.MontantRestant.Equal(fetched.MontantTotal.Sub(fetched.MontantPaye)))
	assert.True(t, fetched.IsConsistent())
	assert.False(t, fetched.EstPayeCompletement)
	assert.Equal(t, "ETE24", fetched.CodePromo)
	assert.Len(t, fetched.Lignes, 2)
}

func TestWizardSurvivesDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := wizard.NewMemoryDrafts(0)
	w := NewWizard(kmTarifs())
	fillWizard(t, w)
	id := wizard.NewDraftID()
	require.NoError(t, wizard.SaveState(ctx, store, DraftKind, id, w.State()))

	state, err := wizard.LoadState(ctx, store, DraftKind, id, NewForm)
	require.NoError(t, err)
	restored := RestoreWizard(state)
	assert.Equal(t, StepRecapitulatif, restored.Step())
	assert.True(t, restored.Summary().MontantTotal.Equal(w.Summary().MontantTotal))
}
