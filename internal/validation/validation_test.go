package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

type line struct {
	Quantite int `json:"quantite" validate:"gte=1"`
}

type sample struct {
	Nom     string          `json:"nom" validate:"required"`
	Montant decimal.Decimal `json:"montant" validate:"gt=0"`
	Date    types.Date      `json:"date" validate:"required"`
	Lignes  []line          `json:"lignes" validate:"min=1,dive"`
}

func TestStructUsesJSONNamesAndCustomTypes(t *testing.T) {
	v := Struct(sample{Montant: decimal.NewFromInt(-5), Lignes: []line{{Quantite: 0}}})
	assert.Equal(t, "Ce champ est requis", v["nom"])
	assert.Equal(t, "Doit être supérieur à 0", v["montant"])
	assert.Equal(t, "Ce champ est requis", v["date"])
	assert.Contains(t, v, "lignes[0].quantite")

	date, _ := types.ParseDate("2024-05-01")
	ok := Struct(sample{Nom: "x", Montant: decimal.NewFromInt(10), Date: date, Lignes: []line{{Quantite: 2}}})
	assert.True(t, ok.Empty(), ok)

	empty := Struct(sample{Nom: "x", Montant: decimal.NewFromInt(1), Date: date})
	assert.Equal(t, "Au moins 1 élément(s) requis", empty["lignes"])
}

func TestViolationsHelpers(t *testing.T) {
	v := Violations{}
	v.Add("code", "first")
	v.Add("code", "second")
	assert.Equal(t, "first", v["code"])

	v.Merge(Violations{"code": "third", "dateFin": "avant"})
	assert.Equal(t, "first", v["code"])
	assert.True(t, v.Has("dateFin"))
	assert.Equal(t, Violations{"dateFin": "avant"}, v.Only("dateFin", "missing"))

	err := v.Err()
	typed := pkgerrors.As(err)
	if assert.NotNil(t, typed) {
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Equal(t, map[string]string(v), typed.Details())
	}
	assert.NoError(t, Violations{}.Err())
}
