package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

func TestParseListParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/orders?page=2&perPage=25&search=+diallo+&statut=en_attente&clientId=", nil)
	params, err := ParseListParams(r)
	require.NoError(t, err)
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 25, params.PerPage)
	assert.Equal(t, "diallo", params.Search)
	assert.Equal(t, map[string]string{"statut": "en_attente"}, params.Filters)
}

func TestParseListParamsDefaultsAndBounds(t *testing.T) {
	params, err := ParseListParams(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.DefaultPerPage, params.PerPage)

	_, err = ParseListParams(httptest.NewRequest(http.MethodGet, "/x?perPage=500", nil))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = ParseListParams(httptest.NewRequest(http.MethodGet, "/x?page=abc", nil))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParseIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", value)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
	}
	id, err := ParseIDParam(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseIDParam(withParam("-1"), "id")
	assert.Error(t, err)
	_, err = ParseIDParam(withParam("x"), "id")
	assert.Error(t, err)
}

type sample struct {
	Motif string `json:"motif" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	var ok sample
	require.NoError(t, DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"motif":"doublon"}`)), &ok))
	assert.Equal(t, "doublon", ok.Motif)

	var missing sample
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), &missing)
	require.Error(t, err)
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "motif")

	var unknown sample
	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`)), &unknown)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeStringKeepsAccentsWhole(t *testing.T) {
	if got := SanitizeString("  Crème   brûlée\t", 0); got != "Crème brûlée" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
	if got := SanitizeString("éééé", 2); got != "éé" {
		t.Fatalf("expected rune truncation, got %q", got)
	}
}
