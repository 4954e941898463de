package tours

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient/apitest"
	"github.com/angelmondragon/pressing-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/types"
)

type tourBackend struct {
	mu     sync.Mutex
	tours  map[int64]*models.Tournee
	nextID int64
}

func newTourBackend(t *testing.T, seed ...models.Tournee) (*apitest.Backend, Service) {
	t.Helper()
	tb := &tourBackend{tours: map[int64]*models.Tournee{}, nextID: 10}
	for i := range seed {
		tour := seed[i]
		tb.tours[tour.ID] = &tour
	}
	backend := apitest.NewBackend(t)
	r := backend.Router
	r.Get("/admin/tournees/{id}", func(w http.ResponseWriter, r *http.Request) {
		tour, ok := tb.find(r)
		if !ok {
			apitest.WriteError(w, http.StatusNotFound, "Tournée introuvable", nil)
			return
		}
		apitest.WriteData(w, http.StatusOK, tour)
	})
	r.Post("/admin/tournees", func(w http.ResponseWriter, r *http.Request) {
		var input Input
		if !apitest.DecodeBody(w, r, &input) {
			return
		}
		tb.mu.Lock()
		tb.nextID++
		tour := &models.Tournee{
			ID: tb.nextID, Numero: "T-" + strconv.FormatInt(tb.nextID, 10),
			DateTournee: input.DateTournee, HeureDebut: input.HeureDebut, HeureFin: input.HeureFin,
			LivreurID: input.LivreurID, Statut: enums.TourStatusPlanifiee,
		}
		for _, op := range input.Operations {
			tour.Operations = append(tour.Operations, models.OperationLogistique{
				TourneeID: tour.ID, CommandeID: op.CommandeID, Type: op.Type, Ordre: op.Ordre,
				DatePrevue: op.DatePrevue, Statut: enums.OperationStatusPlanifiee,
			})
		}
		tb.tours[tour.ID] = tour
		tb.mu.Unlock()
		apitest.WriteData(w, http.StatusCreated, tour)
	})
	r.Delete("/admin/tournees/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		tb.mu.Lock()
		delete(tb.tours, id)
		tb.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	actions := map[string]enums.TourStatus{
		"demarrer": enums.TourStatusEnCours,
		"terminer": enums.TourStatusTerminee,
		"annuler":  enums.TourStatusAnnulee,
	}
	for action, next := range actions {
		next := next
		r.Patch("/admin/tournees/{id}/"+action, func(w http.ResponseWriter, r *http.Request) {
			tour, ok := tb.find(r)
			if !ok {
				apitest.WriteError(w, http.StatusNotFound, "Tournée introuvable", nil)
				return
			}
			tb.mu.Lock()
			tour.Statut = next
			tb.mu.Unlock()
			apitest.WriteData(w, http.StatusOK, tour)
		})
	}
	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	return backend, svc
}

func (tb *tourBackend) find(r *http.Request) (*models.Tournee, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, false
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tour, ok := tb.tours[id]
	return tour, ok
}

func TestDemarrerThenTerminer(t *testing.T) {
	backend, svc := newTourBackend(t, models.Tournee{ID: 1, Statut: enums.TourStatusPlanifiee})
	ctx := context.Background()

	_, err := svc.Terminer(ctx, 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 0, backend.Calls(http.MethodPatch, "/api/admin/tournees/1/terminer"))

	started, err := svc.Demarrer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, enums.TourStatusEnCours, started.Statut)

	finished, err := svc.Terminer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, enums.TourStatusTerminee, finished.Statut)

	_, err = svc.Annuler(ctx, 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestAnnulerFromEnCours(t *testing.T) {
	_, svc := newTourBackend(t, models.Tournee{ID: 2, Statut: enums.TourStatusEnCours})
	cancelled, err := svc.Annuler(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, enums.TourStatusAnnulee, cancelled.Statut)
}

func TestDeleteTour(t *testing.T) {
	backend, svc := newTourBackend(t, models.Tournee{ID: 3, Statut: enums.TourStatusPlanifiee})
	require.NoError(t, svc.Delete(context.Background(), 3))
	_, err := svc.Get(context.Background(), 3)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 1, backend.Calls(http.MethodDelete, "/api/admin/tournees/3"))
}

func TestInputValidate(t *testing.T) {
	day, err := types.ParseDate("2024-05-10")
	require.NoError(t, err)
	input := Input{
		DateTournee: day,
		HeureDebut:  types.Clock{Hour: 14},
		HeureFin:    types.Clock{Hour: 9},
		LivreurID:   5,
		Operations: []OperationInput{
			{CommandeID: 1, Type: enums.OperationTypeCollecte},
			{CommandeID: 1, Type: enums.OperationTypeCollecte},
			{CommandeID: 1, Type: enums.OperationTypeLivraison},
		},
	}
	v := input.Validate()
	assert.True(t, v.Has("heureFin"))
	assert.True(t, v.Has("operations[1]"))
	assert.False(t, v.Has("operations[2]"))
}
