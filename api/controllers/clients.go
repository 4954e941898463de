package controllers

import (
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/clients"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

func ListClients(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return idResult("clientId", svc.Get, logg)
}
