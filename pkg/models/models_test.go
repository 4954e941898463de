package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCommandeReconcile(t *testing.T) {
	order := Commande{MontantTotal: dec("12500"), MontantPaye: dec("5000")}
	order.Reconcile()
	assert.True(t, order.MontantRestant.Equal(dec("7500")))
	assert.False(t, order.EstPayeCompletement)
	assert.True(t, order.IsConsistent())

	order.MontantPaye = dec("12499.995")
	order.Reconcile()
	assert.True(t, order.EstPayeCompletement, "remaining under one cent counts as paid")

	order.MontantRestant = dec("1")
	assert.False(t, order.IsConsistent())
}

func TestCommandeCurrentStatus(t *testing.T) {
	now := time.Now()
	order := Commande{Statuts: []StatutCommande{
		{Statut: Statut{Code: enums.OrderStatusCollectee}, Pivot: StatutPivot{CreatedAt: now.Add(-time.Hour)}},
		{Statut: Statut{Code: enums.OrderStatusEnTraitement}, Pivot: StatutPivot{CreatedAt: now}},
		{Statut: Statut{Code: enums.OrderStatusEnAttente}, Pivot: StatutPivot{CreatedAt: now.Add(-2 * time.Hour)}},
	}}
	current := order.CurrentStatus()
	require.NotNil(t, current)
	assert.Equal(t, enums.OrderStatusEnTraitement, current.Code)
	assert.Nil(t, Commande{}.CurrentStatus())
}

func TestCommandeAmountsEncodeAsNumbers(t *testing.T) {
	out, err := json.Marshal(Commande{MontantTotal: dec("1500.5")})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), `"montantTotal":1500.5`), string(out))

	var decoded Commande
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"montantTotal":"2000","montantPaye":500,"dateCollecte":"2024-05-01"}`), &decoded))
	assert.True(t, decoded.MontantTotal.Equal(dec("2000")))
	assert.Equal(t, "2024-05-01", decoded.DateCollecte.String())
}

func TestPromotionDiscount(t *testing.T) {
	pct := Promotion{TypeReduction: enums.ReductionTypePourcentage, ValeurReduction: dec("10")}
	assert.True(t, pct.Discount(dec("4550")).Equal(dec("455")))

	fixed := Promotion{TypeReduction: enums.ReductionTypeMontantFixe, ValeurReduction: dec("1000")}
	assert.True(t, fixed.Discount(dec("600")).Equal(dec("600")), "discount never exceeds the amount")
	assert.True(t, fixed.Discount(decimal.Zero).IsZero())
}

func TestPromotionUsableOn(t *testing.T) {
	start, _ := types.ParseDate("2024-05-01")
	end, _ := types.ParseDate("2024-05-31")
	limit := 2
	promo := Promotion{DateDebut: start, DateFin: end, EstActif: true, UtilisationsMax: &limit, UtilisationsActuelles: 1}

	assert.True(t, promo.UsableOn(start.AddDays(3), false))
	assert.True(t, promo.UsableOn(end, false))
	assert.False(t, promo.UsableOn(end.AddDays(1), false))

	promo.UtilisationsActuelles = 2
	assert.False(t, promo.UsableOn(start, false))

	promo.UtilisationsActuelles = 0
	promo.PremiereCommandeUniquement = true
	assert.False(t, promo.UsableOn(start, false))
	assert.True(t, promo.UsableOn(start, true))
}

func TestTarifKilometriqueFees(t *testing.T) {
	max := dec("10")
	tariff := TarifKilometrique{PrixParKm: dec("150"), DistanceMin: dec("0"), DistanceMax: &max}
	assert.True(t, tariff.Fees(dec("3.33")).Equal(dec("500")), "fees are rounded up")
	assert.True(t, tariff.Fees(dec("0")).IsZero())
	assert.True(t, tariff.Covers(dec("10")))
	assert.False(t, tariff.Covers(dec("10.5")))
}

func TestTarifValidOn(t *testing.T) {
	start, _ := types.ParseDate("2024-01-01")
	end, _ := types.ParseDate("2024-06-30")
	open := Tarif{DateDebutValidite: start}
	closed := Tarif{DateDebutValidite: start, DateFinValidite: &end}

	assert.True(t, open.ValidOn(start.AddDays(400)))
	assert.False(t, open.ValidOn(start.AddDays(-1)))
	assert.True(t, closed.ValidOn(end))
	assert.False(t, closed.ValidOn(end.AddDays(1)))
}

func TestCreneauLabel(t *testing.T) {
	start, _ := types.ParseClock("08:00")
	end, _ := types.ParseClock("10:00")
	slot := CreneauCollecte{HeureDebut: start, HeureFin: end}
	assert.Equal(t, "08h00 - 10h00", slot.Label())
}
