package promotions

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient/apitest"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

func mustDate(t *testing.T, value string) types.Date {
	t.Helper()
	d, err := types.ParseDate(value)
	require.NoError(t, err)
	return d
}

func validInput(t *testing.T) Input {
	return Input{
		Code:            "ete24",
		TypeReduction:   enums.ReductionTypePourcentage,
		ValeurReduction: decimal.NewFromInt(15),
		DateDebut:       mustDate(t, "2024-06-01"),
		DateFin:         mustDate(t, "2024-08-31"),
		EstActif:        true,
	}
}

func TestValidateRejectsPercentageAbove100(t *testing.T) {
	input := validInput(t)
	input.ValeurReduction = decimal.NewFromInt(110)

	v := input.Validate()
	assert.Contains(t, v, "valeurReduction")
	assert.Len(t, v, 1)
}

func TestValidateAllowsLargeFixedAmount(t *testing.T) {
	input := validInput(t)
	input.TypeReduction = enums.ReductionTypeMontantFixe
	input.ValeurReduction = decimal.NewFromInt(5000)
	assert.True(t, input.Validate().Empty())
}

func TestValidateDateWindowAndCode(t *testing.T) {
	input := validInput(t)
	input.DateFin = input.DateDebut
	input.Code = "x!"

	v := input.Validate()
	assert.Contains(t, v, "dateFin")
	assert.Contains(t, v, "code")

	input = validInput(t)
	input.TypeReduction = "bogus"
	assert.Contains(t, input.Validate(), "typeReduction")
}

func TestToggleActiveTwiceIsIdentity(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Collection("/admin/promotions", map[string]any{"id": 4, "code": "ETE24", "estActif": false})
	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	once, err := svc.ToggleActive(ctx, 4)
	require.NoError(t, err)
	assert.True(t, once.EstActif)
	twice, err := svc.ToggleActive(ctx, 4)
	require.NoError(t, err)
	assert.False(t, twice.EstActif)
}

func TestCreateNormalizesCode(t *testing.T) {
	backend := apitest.NewBackend(t)
	promos := backend.Collection("/admin/promotions")
	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), validInput(t))
	require.NoError(t, err)
	assert.Equal(t, "ETE24", created.Code)
	stored, ok := promos.Item(created.ID)
	require.True(t, ok)
	assert.Equal(t, "ETE24", stored["code"])
}

func TestGetByCodeUsesPublicEndpoint(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Get("/promotions/code/{code}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "code") != "NOEL" {
			apitest.WriteError(w, http.StatusNotFound, "Code inconnu", nil)
			return
		}
		apitest.WriteData(w, http.StatusOK, map[string]any{"id": 2, "code": "NOEL", "typeReduction": "montant_fixe", "valeurReduction": 1000})
	})
	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)

	promo, err := svc.GetByCode(context.Background(), " noel ")
	require.NoError(t, err)
	assert.True(t, promo.ValeurReduction.Equal(decimal.NewFromInt(1000)))

	_, err = svc.GetByCode(context.Background(), "")
	require.Error(t, err)
}
