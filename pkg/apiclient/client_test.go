package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient/apitest"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/metrics"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientSendsBearerAndJSON(t *testing.T) {
	backend := apitest.NewBackend(t)
	var gotAuth, gotType, gotAccept, gotBody string
	backend.Router.Post("/admin/promotions", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		apitest.WriteData(w, http.StatusCreated, map[string]any{"id": 7})
	})

	client, sess := backend.Client(t)
	require.NoError(t, sess.Save(context.Background(), "tok-123"))

	env, err := client.Post(context.Background(), "/admin/promotions", map[string]string{"code": "ETE24"})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "application/json", gotAccept)
	assert.JSONEq(t, `{"code":"ETE24"}`, gotBody)

	created, err := apiclient.DecodeData[struct {
		ID int64 `json:"id"`
	}](env)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	backend := apitest.NewBackend(t)
	var hasAuth atomic.Bool
	backend.Router.Get("/services", func(w http.ResponseWriter, r *http.Request) {
		hasAuth.Store(r.Header.Get("Authorization") != "")
		apitest.WriteData(w, http.StatusOK, []any{})
	})
	client, _ := backend.Client(t)

	_, err := client.Get(context.Background(), "services")
	require.NoError(t, err)
	assert.False(t, hasAuth.Load())
}

func TestClient401ClearsSessionAndNotifies(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Get("/admin/commandes", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, "Session expirée", nil)
	})

	var notified atomic.Int32
	client, sess := backend.Client(t, apiclient.WithUnauthorizedHandler(func(context.Context) {
		notified.Add(1)
	}))
	ctx := context.Background()
	require.NoError(t, sess.Save(ctx, "stale"))

	_, err := client.Get(ctx, "/admin/commandes")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	token, tokenErr := sess.Token(ctx)
	require.NoError(t, tokenErr)
	assert.Empty(t, token, "401 must clear the stored token")
	assert.Equal(t, int32(1), notified.Load())
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/api/admin/commandes"))
}

func TestClient401OnLoginDoesNotNotify(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, "Identifiants invalides", nil)
	})

	notified := false
	client, _ := backend.Client(t, apiclient.WithUnauthorizedHandler(func(context.Context) { notified = true }))

	_, err := client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
	assert.False(t, notified)
}

func TestClientFailsFastOnClientErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		status := status
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Router.Get("/admin/tournees/1", func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteError(w, status, "nope", nil)
			})
			var slept []time.Duration
			client, _ := backend.Client(t, apiclient.WithRetryPolicy(apitest.InstantRetries(3, &slept)))

			_, err := client.Get(context.Background(), "/admin/tournees/1")
			require.Error(t, err)
			assert.Equal(t, status, apiclient.StatusOf(err))
			assert.Equal(t, 1, backend.TotalCalls())
			assert.Empty(t, slept)
		})
	}
}

func TestClientRetriesOtherFailuresWithBackoff(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusUnprocessableEntity, http.StatusConflict} {
		status := status
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend := apitest.NewBackend(t)
			backend.Router.Get("/admin/paiements", func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteError(w, status, "failure", nil)
			})
			var slept []time.Duration
			client, _ := backend.Client(t, apiclient.WithRetryPolicy(apitest.InstantRetries(3, &slept)))

			_, err := client.Get(context.Background(), "/admin/paiements")
			require.Error(t, err)
			assert.Equal(t, status, apiclient.StatusOf(err))
			assert.Equal(t, 4, backend.TotalCalls(), "retries+1 attempts")
			assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, slept)
		})
	}
}

func TestClientRecoversAfterTransientFailure(t *testing.T) {
	backend := apitest.NewBackend(t)
	var calls atomic.Int32
	backend.Router.Get("/admin/clients", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			apitest.WriteError(w, http.StatusServiceUnavailable, "busy", nil)
			return
		}
		apitest.WriteData(w, http.StatusOK, []map[string]any{{"id": 1, "nom": "Diallo"}})
	})

	reg := prometheus.NewRegistry()
	client, _ := backend.Client(t, apiclient.WithMetrics(metrics.NewAPIClientMetrics(reg)))
	env, err := client.Get(context.Background(), "/admin/clients")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, int32(3), calls.Load())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var retries float64
	for _, mf := range mfs {
		if mf.GetName() == "pressing_api_retries_total" {
			retries = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), retries)
}

func TestClientRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	})
	client, err := apiclient.New("http://pressing.test/api",
		apiclient.WithHTTPClient(&http.Client{Transport: rt}),
		apiclient.WithRetryPolicy(apitest.InstantRetries(2, nil)),
	)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/admin/services")
	require.Error(t, err)
	assert.Equal(t, 0, apiclient.StatusOf(err))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientRetriesAttemptTimeouts(t *testing.T) {
	backend := apitest.NewBackend(t)
	var calls atomic.Int32
	backend.Router.Get("/admin/tarifs", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		apitest.WriteData(w, http.StatusOK, []any{})
	})
	client, _ := backend.Client(t)

	_, err := client.Get(context.Background(), "/admin/tarifs", apiclient.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientStopsWhenCallerCancels(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Get("/admin/tournees", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusInternalServerError, "boom", nil)
	})
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := backend.Client(t)
	cancel()

	_, err := client.Get(ctx, "/admin/tournees")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.TotalCalls())
}

func TestClientNoContentReturnsSyntheticEnvelope(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Delete("/admin/tournees/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := backend.Client(t)

	env, err := client.Delete(context.Background(), "/admin/tournees/4")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)
}

func TestClientSurfacesFieldErrors(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Post("/admin/promotions", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusBadRequest, "Données invalides", map[string]any{
			"code":            []string{"Le code existe déjà", "autre"},
			"valeurReduction": "Doit être positif",
		})
	})
	client, _ := backend.Client(t)

	_, err := client.Post(context.Background(), "/admin/promotions", map[string]any{})
	require.Error(t, err)
	fields := apiclient.FieldErrorsOf(err)
	assert.Equal(t, "Le code existe déjà", fields["code"])
	assert.Equal(t, "Doit être positif", fields["valeurReduction"])

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Données invalides", typed.Message())
	assert.Equal(t, fields, typed.Details())
}

func TestClientAppendsQuery(t *testing.T) {
	backend := apitest.NewBackend(t)
	var rawQuery string
	backend.Router.Get("/admin/commandes", func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		apitest.WriteData(w, http.StatusOK, []any{})
	})
	client, _ := backend.Client(t)

	_, err := client.Get(context.Background(), "/admin/commandes", apiclient.WithQuery(map[string][]string{"page": {"2"}}))
	require.NoError(t, err)
	assert.Equal(t, "page=2", rawQuery)
}

func TestClientUploadIsReplayable(t *testing.T) {
	backend := apitest.NewBackend(t)
	var calls atomic.Int32
	var received []string
	backend.Router.Post("/admin/operations-logistiques/{id}/preuves", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("preuve")
		if !assert.NoError(t, err) {
			apitest.WriteError(w, http.StatusBadRequest, "missing file", nil)
			return
		}
		content, _ := io.ReadAll(file)
		received = append(received, header.Filename+":"+string(content)+":"+r.FormValue("commentaire"))
		if calls.Add(1) == 1 {
			apitest.WriteError(w, http.StatusBadGateway, "retry me", nil)
			return
		}
		apitest.WriteData(w, http.StatusCreated, map[string]any{"id": 1})
	})
	client, _ := backend.Client(t)

	_, err := client.Upload(context.Background(), "/admin/operations-logistiques/9/preuves", apiclient.Upload{
		Field:    "preuve",
		Filename: "signature.png",
		Content:  []byte("png-bytes"),
		Fields:   map[string]string{"commentaire": "remis au gardien"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"signature.png:png-bytes:remis au gardien",
		"signature.png:png-bytes:remis au gardien",
	}, received)
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := apiclient.New("/api")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "absolute"))
}
