package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

// idAction runs a mutation addressed by the numeric route param and answers 204.
func idAction(param string, run func(ctx context.Context, id int64) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := run(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// idResult runs a call addressed by the numeric route param and writes its result.
func idResult[T any](param string, run func(ctx context.Context, id int64) (T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := run(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
