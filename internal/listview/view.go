// Package listview holds the state behind a paginated, filterable list screen.
package listview

import (
	"context"
	"sync"

	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// Fetcher loads one page of records.
type Fetcher[T any] func(ctx context.Context, params pagination.Params) (*pagination.Page[T], error)

// Snapshot is a copy of the view state safe to hand to a renderer.
type Snapshot[T any] struct {
	Items      []T               `json:"items"`
	Meta       *pagination.Meta  `json:"meta,omitempty"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	Search     string            `json:"search,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
	Generation uint64            `json:"generation"`
}

// View keeps the current page, filters and the last result. Every fetch carries a generation;
// a result is applied only if no newer fetch started after it.
type View[T any] struct {
	fetch Fetcher[T]

	mu      sync.Mutex
	params  pagination.Params
	items   []T
	meta    *pagination.Meta
	loading bool
	err     error
	gen     uint64
}

// New returns an empty view. perPage <= 0 uses the default page size.
func New[T any](fetch Fetcher[T], perPage int) *View[T] {
	return &View[T]{
		fetch: fetch,
		params: pagination.Params{
			Page:    1,
			PerPage: pagination.NormalizePerPage(perPage),
			Filters: map[string]string{},
		},
		items: []T{},
	}
}

// Refresh reloads the current page. A response overtaken by a newer fetch is dropped and nil is
// returned.
func (v *View[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	params := v.copyParams()
	v.loading = true
	v.mu.Unlock()

	page, err := v.fetch(ctx, params)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return nil
	}
	v.loading = false
	if err != nil {
		v.err = err
		return err
	}
	v.err = nil
	if page == nil {
		v.items, v.meta = []T{}, nil
		return nil
	}
	v.items = page.Data
	if v.items == nil {
		v.items = []T{}
	}
	v.meta = page.Meta
	return nil
}

// Retry repeats the last fetch with unchanged parameters.
func (v *View[T]) Retry(ctx context.Context) error {
	return v.Refresh(ctx)
}

// SetFilter changes one filter, goes back to the first page and reloads. An empty value removes
// the filter.
func (v *View[T]) SetFilter(ctx context.Context, key, value string) error {
	v.mu.Lock()
	if value == "" {
		delete(v.params.Filters, key)
	} else {
		v.params.Filters[key] = value
	}
	v.params.Page = 1
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetSearch changes the search text, goes back to the first page and reloads.
func (v *View[T]) SetSearch(ctx context.Context, search string) error {
	v.mu.Lock()
	v.params.Search = search
	v.params.Page = 1
	v.mu.Unlock()
	return v.Refresh(ctx)
}

func (v *View[T]) SetPage(ctx context.Context, page int) error {
	v.mu.Lock()
	v.params.Page = pagination.NormalizePage(page)
	v.mu.Unlock()
	return v.Refresh(ctx)
}

func (v *View[T]) SetPerPage(ctx context.Context, perPage int) error {
	v.mu.Lock()
	v.params.PerPage = pagination.NormalizePerPage(perPage)
	v.params.Page = 1
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Configure replaces page, search and filters at once without fetching.
func (v *View[T]) Configure(params pagination.Params) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Page = pagination.NormalizePage(params.Page)
	if params.PerPage > 0 {
		v.params.PerPage = pagination.NormalizePerPage(params.PerPage)
	}
	v.params.Search = params.Search
	v.params.Filters = map[string]string{}
	for k, val := range params.Filters {
		if val != "" {
			v.params.Filters[k] = val
		}
	}
}

func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	params := v.copyParams()
	snap := Snapshot[T]{
		Items:      append([]T(nil), v.items...),
		Meta:       v.meta,
		Page:       params.Page,
		PerPage:    params.PerPage,
		Search:     params.Search,
		Filters:    params.Filters,
		Loading:    v.loading,
		Generation: v.gen,
	}
	if snap.Items == nil {
		snap.Items = []T{}
	}
	if v.err != nil {
		snap.Error = v.err.Error()
	}
	return snap
}

// Err returns the error of the last applied fetch.
func (v *View[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *View[T]) copyParams() pagination.Params {
	params := v.params
	params.Filters = make(map[string]string, len(v.params.Filters))
	for k, val := range v.params.Filters {
		params.Filters[k] = val
	}
	return params
}
