package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

// Collection is an in-memory admin resource served with the conventional CRUD routes.
type Collection struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]map[string]any
}

// Collection registers CRUD, toggle-active, archive and restore routes under path.
func (b *Backend) Collection(path string, seed ...map[string]any) *Collection {
	c := &Collection{nextID: 1, items: map[int64]map[string]any{}}
	for _, item := range seed {
		c.Put(item)
	}

	b.Router.Route(path, func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", c.get)
			r.Put("/", c.update)
			r.Delete("/", c.delete)
			r.Patch("/toggle-active", c.mutate(func(item map[string]any) {
				active, _ := item["estActif"].(bool)
				item["estActif"] = !active
			}))
			r.Patch("/archive", c.mutate(func(item map[string]any) { item["estArchive"] = true }))
			r.Patch("/restore", c.mutate(func(item map[string]any) { item["estArchive"] = false }))
		})
	})
	return c
}

// Put stores item, assigning an id when missing, and returns the id.
func (c *Collection) Put(item map[string]any) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	if raw, ok := item["id"]; ok {
		id = toInt64(raw)
	}
	if id >= c.nextID {
		c.nextID = id + 1
	}
	stored := map[string]any{}
	for k, v := range item {
		stored[k] = v
	}
	stored["id"] = id
	c.items[id] = stored
	return id
}

// Item returns a copy of the stored record.
func (c *Collection) Item(id int64) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	out := map[string]any{}
	for k, v := range item {
		out[k] = v
	}
	return out, true
}

// Len returns the number of stored records.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection) list(w http.ResponseWriter, r *http.Request) {
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	perPage := pagination.NormalizePerPage(atoiDefault(r.URL.Query().Get("perPage"), 0))

	c.mu.Lock()
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, c.items[id])
	}
	c.mu.Unlock()

	total := len(items)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}
	WritePage(w, items[start:end], pagination.Meta{Page: page, PerPage: perPage, Total: total, LastPage: lastPage})
}

func (c *Collection) get(w http.ResponseWriter, r *http.Request) {
	item, ok := c.Item(idParam(r))
	if !ok {
		WriteError(w, http.StatusNotFound, "Ressource introuvable", nil)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (c *Collection) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !DecodeBody(w, r, &body) {
		return
	}
	delete(body, "id")
	if _, ok := body["estActif"]; !ok {
		body["estActif"] = true
	}
	body["estArchive"] = false
	id := c.Put(body)
	item, _ := c.Item(id)
	WriteData(w, http.StatusCreated, item)
}

func (c *Collection) update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	var body map[string]any
	if !DecodeBody(w, r, &body) {
		return
	}
	c.mu.Lock()
	item, ok := c.items[id]
	if ok {
		for k, v := range body {
			if k != "id" {
				item[k] = v
			}
		}
	}
	c.mu.Unlock()
	if !ok {
		WriteError(w, http.StatusNotFound, "Ressource introuvable", nil)
		return
	}
	updated, _ := c.Item(id)
	WriteData(w, http.StatusOK, updated)
}

func (c *Collection) delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	c.mu.Lock()
	_, ok := c.items[id]
	delete(c.items, id)
	c.mu.Unlock()
	if !ok {
		WriteError(w, http.StatusNotFound, "Ressource introuvable", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Collection) mutate(fn func(map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idParam(r)
		c.mu.Lock()
		item, ok := c.items[id]
		if ok {
			fn(item)
		}
		c.mu.Unlock()
		if !ok {
			WriteError(w, http.StatusNotFound, "Ressource introuvable", nil)
			return
		}
		updated, _ := c.Item(id)
		WriteData(w, http.StatusOK, updated)
	}
}

func idParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func atoiDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func toInt64(raw any) int64 {
	switch v := raw.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
