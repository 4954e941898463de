// Package resource implements the CRUD verbs shared by the backend's configuration resources.
package resource

import (
	"context"
	"strings"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// Resource is a typed client for one admin collection. T is the record, I the create/update payload.
type Resource[T any, I any] struct {
	api        apiclient.Requester
	adminPath  string
	publicPath string
}

// New binds a resource to its admin path and optional public path.
func New[T any, I any](api apiclient.Requester, adminPath, publicPath string) (*Resource[T, I], error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	if strings.TrimSpace(adminPath) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "resource path required")
	}
	return &Resource[T, I]{api: api, adminPath: adminPath, publicPath: publicPath}, nil
}

// AdminPath returns the admin collection path.
func (r *Resource[T, I]) AdminPath() string {
	return r.adminPath
}

func (r *Resource[T, I]) List(ctx context.Context, params pagination.Params) (*pagination.Page[T], error) {
	return apiclient.GetPage[T](ctx, r.api, r.adminPath, params)
}

// ListPublic returns the customer-facing list (active entries only on the backend side).
func (r *Resource[T, I]) ListPublic(ctx context.Context) ([]T, error) {
	if r.publicPath == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource has no public listing")
	}
	page, err := apiclient.GetList[T](ctx, r.api, r.publicPath)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (r *Resource[T, I]) Get(ctx context.Context, id int64) (*T, error) {
	record, err := apiclient.GetData[T](ctx, r.api, apiclient.Path(r.adminPath, id))
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Resource[T, I]) Create(ctx context.Context, input I) (*T, error) {
	env, err := r.api.Post(ctx, r.adminPath, input)
	if err != nil {
		return nil, err
	}
	record, err := apiclient.DecodeData[T](env)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Resource[T, I]) Update(ctx context.Context, id int64, input I) (*T, error) {
	env, err := r.api.Put(ctx, apiclient.Path(r.adminPath, id), input)
	if err != nil {
		return nil, err
	}
	return r.recordOrFetch(ctx, id, env)
}

func (r *Resource[T, I]) Delete(ctx context.Context, id int64) error {
	_, err := r.api.Delete(ctx, apiclient.Path(r.adminPath, id))
	return err
}

// ToggleActive flips estActif and returns the updated record.
func (r *Resource[T, I]) ToggleActive(ctx context.Context, id int64) (*T, error) {
	env, err := r.api.Patch(ctx, apiclient.Path(r.adminPath, id, "toggle-active"), nil)
	if err != nil {
		return nil, err
	}
	return r.recordOrFetch(ctx, id, env)
}

func (r *Resource[T, I]) Archive(ctx context.Context, id int64) error {
	_, err := r.api.Patch(ctx, apiclient.Path(r.adminPath, id, "archive"), nil)
	return err
}

func (r *Resource[T, I]) Restore(ctx context.Context, id int64) error {
	_, err := r.api.Patch(ctx, apiclient.Path(r.adminPath, id, "restore"), nil)
	return err
}

// recordOrFetch decodes the returned record, fetching it again when the backend answered without a body.
func (r *Resource[T, I]) recordOrFetch(ctx context.Context, id int64, env *apiclient.Envelope) (*T, error) {
	if env != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		record, err := apiclient.DecodeData[T](env)
		if err != nil {
			return nil, err
		}
		return &record, nil
	}
	return r.Get(ctx, id)
}
