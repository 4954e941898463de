package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/tariffs"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

func ListCurrentTariffs(svc tariffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListCurrent(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// TariffHistory lists every price version of a service, option or linen type.
func TariffHistory(svc tariffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseHistoryFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		versions, err := svc.History(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, versions)
	}
}

func CreateTariffVersion(svc tariffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tariffs.VersionInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		version, err := svc.CreateVersion(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, version)
	}
}

func parseHistoryFilter(r *http.Request) (tariffs.HistoryFilter, error) {
	var filter tariffs.HistoryFilter
	fields := map[string]*int64{
		"serviceId":          &filter.ServiceID,
		"optionTraitementId": &filter.OptionTraitementID,
		"typeLingeId":        &filter.TypeLingeID,
	}
	for key, dest := range fields {
		raw := strings.TrimSpace(r.URL.Query().Get(key))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid history filter").
				WithDetails(map[string]string{key: "Identifiant invalide"})
		}
		*dest = id
	}
	if filter.ServiceID == 0 && filter.OptionTraitementID == 0 {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid history filter").
			WithDetails(map[string]string{"serviceId": "Choisissez un service ou une option de traitement"})
	}
	return filter, nil
}
