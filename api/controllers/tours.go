package controllers

import (
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/tours"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

func ListTours(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
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

func GetTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "tourId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tour, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tour)
	}
}

func CreateTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tours.Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tour, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tour)
	}
}

func UpdateTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "tourId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body tours.Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tour, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tour)
	}
}

func DeleteTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return idAction("tourId", svc.Delete, logg)
}

func StartTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return idResult("tourId", svc.Demarrer, logg)
}

func FinishTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return idResult("tourId", svc.Terminer, logg)
}

func CancelTour(svc tours.Service, logg *logger.Logger) http.HandlerFunc {
	return idResult("tourId", svc.Annuler, logg)
}
