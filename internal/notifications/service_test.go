package notifications

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/apiclient/apitest"
	"github.com/angelmondragon/pressing-admin/pkg/models"
	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

func TestInboxEndpoints(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Router.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		apitest.WritePage(w, []models.Notification{{ID: 1, Titre: "Paiement reçu"}}, pagination.Meta{Page: 1, PerPage: 10, Total: 1, LastPage: 1})
	})
	backend.Router.Patch("/notifications/{id}/lu", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	backend.Router.Patch("/notifications/lu", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, http.StatusOK, map[string]any{"updated": 3})
	})
	client, _ := backend.Client(t)
	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, "Paiement reçu", page.Data[0].Titre)

	require.NoError(t, svc.MarkRead(ctx, 1))
	require.NoError(t, svc.MarkAllRead(ctx))
	assert.Equal(t, 1, backend.Calls(http.MethodPatch, "/api/notifications/1/lu"))
	assert.Equal(t, 1, backend.Calls(http.MethodPatch, "/api/notifications/lu"))
}
