package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPerPage is the page size used when a caller does not provide one.
	DefaultPerPage = 10
	// MaxPerPage caps how many rows a list view may request.
	MaxPerPage = 100
)

// Params holds page-based pagination inputs together with free-form filters.
type Params struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// NormalizePerPage enforces the default and maximum page size.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// NormalizePage clamps the page number to at least 1.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Query renders the params as backend query values. Empty filters are skipped.
func (p Params) Query() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(NormalizePage(p.Page)))
	values.Set("perPage", strconv.Itoa(NormalizePerPage(p.PerPage)))
	if search := strings.TrimSpace(p.Search); search != "" {
		values.Set("search", search)
	}
	for key, value := range p.Filters {
		if strings.TrimSpace(value) == "" {
			continue
		}
		values.Set(key, value)
	}
	return values
}

// Meta mirrors the backend pagination block.
type Meta struct {
	Page     int `json:"page"`
	PerPage  int `json:"perPage"`
	Total    int `json:"total"`
	LastPage int `json:"lastPage"`
}

// UnmarshalJSON accepts both "page" and "currentPage" for the current page number.
func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page        *int `json:"page"`
		CurrentPage *int `json:"currentPage"`
		PerPage     int  `json:"perPage"`
		Total       int  `json:"total"`
		LastPage    int  `json:"lastPage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Meta{PerPage: raw.PerPage, Total: raw.Total, LastPage: raw.LastPage}
	switch {
	case raw.Page != nil:
		m.Page = *raw.Page
	case raw.CurrentPage != nil:
		m.Page = *raw.CurrentPage
	}
	return nil
}

// HasNext reports whether another page exists after the current one.
func (m *Meta) HasNext() bool {
	return m != nil && m.Page < m.LastPage
}

// Page is a decoded list; Meta is nil when the backend returned a flat array.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Len returns the number of records on the page.
func (p *Page[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// Total returns the backend total when known, otherwise the page length.
func (p *Page[T]) Total() int {
	if p == nil {
		return 0
	}
	if p.Meta != nil {
		return p.Meta.Total
	}
	return len(p.Data)
}
