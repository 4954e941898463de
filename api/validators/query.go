package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

const maxSearchLen = 120

// reservedListKeys are query parameters that are not forwarded as filters.
var reservedListKeys = map[string]struct{}{
	"page":    {},
	"perPage": {},
	"search":  {},
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseListParams reads page, perPage and search; every other non-empty query value becomes a
// backend filter.
func ParseListParams(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := ParseQueryInt(r, "perPage", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	params := pagination.Params{
		Page:    page,
		PerPage: perPage,
		Search:  SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
		Filters: map[string]string{},
	}
	for key, values := range r.URL.Query() {
		if _, reserved := reservedListKeys[key]; reserved || len(values) == 0 {
			continue
		}
		if value := SanitizeString(values[0], maxSearchLen); value != "" {
			params.Filters[key] = value
		}
	}
	return params, nil
}

// ParseIDParam reads a positive numeric route parameter.
func ParseIDParam(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
