package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pressing-admin/api/responses"
	"github.com/angelmondragon/pressing-admin/api/validators"
	"github.com/angelmondragon/pressing-admin/internal/catalog"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
)

// CatalogLookup resolves a catalog resource by its route name.
type CatalogLookup interface {
	Lookup(name string) (catalog.Entry, bool)
	Names() []string
}

func catalogEntry(cat CatalogLookup, r *http.Request) (catalog.Entry, error) {
	name := chi.URLParam(r, "resource")
	entry, ok := cat.Lookup(name)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown catalog resource").
			WithDetails(map[string]any{"resource": name, "available": cat.Names()})
	}
	return entry, nil
}

// CatalogResources lists the managed reference resources.
func CatalogResources(cat CatalogLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, cat.Names())
	}
}

func ListCatalog(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := entry.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListPublicCatalog returns the active entries as shown to customers.
func ListPublicCatalog(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := entry.ListPublic(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idResult("itemId", entry.Get, logg)(w, r)
	}
}

func CreateCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := validators.DecodeRawBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := entry.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func UpdateCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := validators.DecodeRawBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := entry.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ToggleCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idResult("itemId", entry.ToggleActive, logg)(w, r)
	}
}

func DeleteCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idAction("itemId", entry.Delete, logg)(w, r)
	}
}

func ArchiveCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idAction("itemId", entry.Archive, logg)(w, r)
	}
}

func RestoreCatalogItem(cat CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := catalogEntry(cat, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idAction("itemId", entry.Restore, logg)(w, r)
	}
}
