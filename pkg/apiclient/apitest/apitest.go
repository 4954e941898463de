// Package apitest provides an in-process stand-in for the pressing backend.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
	"github.com/angelmondragon/pressing-admin/pkg/retry"
	"github.com/angelmondragon/pressing-admin/pkg/session"
)

// Backend serves handlers registered on Router under the /api prefix and counts calls.
type Backend struct {
	Server *httptest.Server
	Router chi.Router

	mu    sync.Mutex
	calls map[string]int
	total int
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{calls: map[string]int{}}
	api := chi.NewRouter()
	root := chi.NewRouter()
	root.Use(b.count)
	root.Mount("/api", api)
	b.Router = api
	b.Server = httptest.NewServer(root)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL clients should use.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Calls returns how many requests hit method and path (path includes the /api prefix).
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// TotalCalls returns the number of requests received.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.total++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Client returns an API client bound to the backend with instant retries and an in-memory session.
func (b *Backend) Client(t testing.TB, opts ...apiclient.Option) (*apiclient.Client, *session.Session) {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	base := []apiclient.Option{
		apiclient.WithSession(sess),
		apiclient.WithRetryPolicy(InstantRetries(3, nil)),
	}
	client, err := apiclient.New(b.URL(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	return client, sess
}

// InstantRetries is the default retry schedule without real waiting. Delays are recorded when slept is non-nil.
func InstantRetries(retries int, slept *[]time.Duration) retry.Policy {
	var mu sync.Mutex
	return retry.Policy{
		MaxRetries: retries,
		BaseDelay:  retry.DefaultBaseDelay,
		Sleep: func(ctx context.Context, d time.Duration) error {
			if slept != nil {
				mu.Lock()
				*slept = append(*slept, d)
				mu.Unlock()
			}
			return ctx.Err()
		},
	}
}

// WriteData writes a success envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

// WritePage writes a paginated success envelope.
func WritePage(w http.ResponseWriter, items any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"data": items, "meta": meta},
	})
}

// WriteError writes a failure envelope. errs may be nil.
func WriteError(w http.ResponseWriter, status int, message string, errs any) {
	body := map[string]any{"success": false, "message": message}
	if errs != nil {
		body["errors"] = errs
	}
	writeJSON(w, status, body)
}

// DecodeBody decodes the JSON request body into v or fails the request with 400.
func DecodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
