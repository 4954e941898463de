package pagination

import (
	"encoding/json"
	"testing"
)

func TestNormalizePerPage(t *testing.T) {
	cases := map[int]int{0: DefaultPerPage, -3: DefaultPerPage, 25: 25, 500: MaxPerPage}
	for in, want := range cases {
		if got := NormalizePerPage(in); got != want {
			t.Fatalf("NormalizePerPage(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestParamsQuery(t *testing.T) {
	q := Params{Page: 2, PerPage: 20, Search: " dupont ", Filters: map[string]string{"statut": "planifiee", "livreurId": ""}}.Query()
	if q.Get("page") != "2" || q.Get("perPage") != "20" {
		t.Fatalf("unexpected paging query %v", q)
	}
	if q.Get("search") != "dupont" {
		t.Fatalf("expected trimmed search, got %q", q.Get("search"))
	}
	if q.Get("statut") != "planifiee" {
		t.Fatalf("expected statut filter, got %v", q)
	}
	if _, ok := q["livreurId"]; ok {
		t.Fatalf("empty filters should be skipped: %v", q)
	}
}

func TestMetaAcceptsCurrentPage(t *testing.T) {
	var meta Meta
	if err := json.Unmarshal([]byte(`{"currentPage":3,"perPage":10,"total":42,"lastPage":5}`), &meta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if meta.Page != 3 || meta.Total != 42 || meta.LastPage != 5 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !meta.HasNext() {
		t.Fatal("expected a next page")
	}

	if err := json.Unmarshal([]byte(`{"page":5,"perPage":10,"total":42,"lastPage":5}`), &meta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if meta.Page != 5 || meta.HasNext() {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestPageTotal(t *testing.T) {
	flat := &Page[int]{Data: []int{1, 2}}
	if flat.Total() != 2 {
		t.Fatalf("flat total = %d", flat.Total())
	}
	paged := &Page[int]{Data: []int{1}, Meta: &Meta{Total: 9}}
	if paged.Total() != 9 {
		t.Fatalf("paged total = %d", paged.Total())
	}
	var nilPage *Page[int]
	if nilPage.Len() != 0 || nilPage.Total() != 0 {
		t.Fatal("nil page should be empty")
	}
}
